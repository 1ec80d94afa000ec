package adapter

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type ClientOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts ClientOptions) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Ping confirma que o servidor está acessível antes de o serviço subir.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	return client.Ping(ctx).Err()
}
