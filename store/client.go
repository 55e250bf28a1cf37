package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DATABASE = "boardinghouse"

func GetClient(host, port string) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s/", host, port)
	optionsClient := options.Client().ApplyURI(uri)
	return mongo.Connect(context.TODO(), optionsClient)
}

func GetClientWithHTTPConfig(host, port string, httpClient *http.Client) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s/", host, port)
	optionsClient := options.Client().ApplyURI(uri).SetHTTPClient(httpClient)
	return mongo.Connect(context.TODO(), optionsClient)
}

func GetRedisClient(host, port string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return client, nil
}
