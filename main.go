package main

import (
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/startup"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/startup/config"
)

func main() {
	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
