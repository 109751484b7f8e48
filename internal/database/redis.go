package database

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis builds a redis client from a redis:// URL. The client backs
// the dashboard stats cache only; ledger state is always read from Postgres.
func ConnectRedis(rawURL string) *redis.Client {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opts)
}
