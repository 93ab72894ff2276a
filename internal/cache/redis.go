package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const refDataKey = "refdata:all"

var client *redis.Client

// Init initializes the Redis connection. The cache is optional; when Redis
// is unreachable every lookup falls through to the database.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetReferenceData returns the cached reference-data JSON blob if present.
func GetReferenceData(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, refDataKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetReferenceData caches the reference-data JSON blob for an hour.
func SetReferenceData(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, refDataKey, data, time.Hour)
}

// InvalidateReferenceData drops the cached blob after an admin edit.
func InvalidateReferenceData(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, refDataKey)
}
