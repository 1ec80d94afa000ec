package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
)

var errSeatLockBusy = errors.New("seat lock held by another request")

// releaseScript só apaga a chave se ela ainda pertence ao token de quem travou.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSeatLocker trava o par ônibus/assento entre várias instâncias do
// serviço. A chave expira após ttl caso o dono morra sem liberar.
type RedisSeatLocker struct {
	client    redis.UniversalClient
	ttl       time.Duration
	retryWait time.Duration
	prefix    string
	logger    pkgApp.AppLogger
}

func NewRedisSeatLocker(client redis.UniversalClient, ttl, retryWait time.Duration, logger pkgApp.AppLogger) *RedisSeatLocker {
	return &RedisSeatLocker{
		client:    client,
		ttl:       ttl,
		retryWait: retryWait,
		prefix:    "booking:seat-lock:",
		logger:    logger,
	}
}

func (l *RedisSeatLocker) key(busNumber, seatNumber string) string {
	return l.prefix + busNumber + ":" + seatNumber
}

func (l *RedisSeatLocker) Lock(ctx context.Context, busNumber, seatNumber string) (func(), error) {
	key := l.key(busNumber, seatNumber)
	token := uuid.NewString()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	untilCancelled := func(uint) bool { return ctx.Err() == nil }
	err := retry.Retry(func(attempt uint) error {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if !acquired {
			return errSeatLockBusy
		}
		return nil
	}, untilCancelled, strategy.Wait(l.retryWait))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			pkgApp.LogError(releaseCtx, l.logger, "failed to release seat lock", err, map[string]interface{}{"key": key})
		}
	}, nil
}
