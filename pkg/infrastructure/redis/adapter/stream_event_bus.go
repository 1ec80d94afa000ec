package adapter

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/bus-booking/pkg/application"
	"github.com/mateusmacedo/bus-booking/pkg/domain"
	watermillAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/watermill/adapter"
)

type StreamOptions struct {
	ConsumerGroup string
	Consumer      string
}

// NewRedisEventBus publica e consome eventos por redis streams, um stream por nome de evento.
func NewRedisEventBus[E domain.Event[D], D any](client redis.UniversalClient, opts StreamOptions, logger application.AppLogger) (*watermillAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: opts.ConsumerGroup,
		Consumer:      opts.Consumer,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return watermillAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}
