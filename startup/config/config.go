package config

import "os"

type Config struct {
	Port          string
	DBHost        string
	DBPort        string
	CacheHost     string
	CachePort     string
	JaegerAddress string
	RendererHost  string
	RendererPort  string
	SweepInterval string
}

func NewConfig() *Config {
	return &Config{
		Port:          os.Getenv("BOARDING_SERVICE_PORT"),
		DBHost:        os.Getenv("BOARDING_DB_HOST"),
		DBPort:        os.Getenv("BOARDING_DB_PORT"),
		CacheHost:     os.Getenv("BOARDING_CACHE_HOST"),
		CachePort:     os.Getenv("BOARDING_CACHE_PORT"),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
		RendererHost:  os.Getenv("RECEIPT_RENDERER_HOST"),
		RendererPort:  os.Getenv("RECEIPT_RENDERER_PORT"),
		SweepInterval: os.Getenv("OVERDUE_SWEEP_INTERVAL"),
	}
}
