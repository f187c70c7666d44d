package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// NewMongoClient connects to MongoDB and verifies the connection with a ping
func NewMongoClient(ctx context.Context, uri, username, password string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	if username != "" && password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: username,
			Password: password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// GetDatabase gets a database from the client
func GetDatabase(client *mongo.Client, name string) *mongo.Database {
	return client.Database(name)
}
