package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"tw-screener/internal/retry"
)

// Redis publishes each destination as a list of tab-separated rows
// under "sheet:<destination>", with the freshness marker in a sibling
// key. The whole replace goes through one MULTI/EXEC so readers never
// observe a half-written destination.
type Redis struct {
	client *goredis.Client
}

// RedisConfig configures the Redis sink.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// NewRedis creates a Redis sink and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error {
	key := "sheet:" + destinationID

	rows := make([]interface{}, 0, len(table.Rows)+1)
	rows = append(rows, strings.Join(table.Header, "\t"))
	for _, row := range table.Rows {
		rows = append(rows, strings.Join(row, "\t"))
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, rows...)
	pipe.Set(ctx, key+":freshness", freshnessMarker, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		// Redis being unreachable mid-run is a momentary condition.
		return retry.Transient(fmt.Errorf("redis replace %q: %w", destinationID, err))
	}
	return nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
