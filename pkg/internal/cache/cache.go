package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// R is the replicated cache shared by all cluster nodes. It backs the
// cross-node listener relay and nothing else; per-call state stays in the
// database.
var R *redis.Client

func NewCache() error {
	R = redis.NewClient(&redis.Options{
		Addr:     viper.GetString("cache.addr"),
		Password: viper.GetString("cache.password"),
		DB:       viper.GetInt("cache.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := R.Ping(ctx).Err(); err != nil {
		return err
	}

	log.Info().Str("addr", viper.GetString("cache.addr")).Msg("Cache connected.")
	return nil
}
