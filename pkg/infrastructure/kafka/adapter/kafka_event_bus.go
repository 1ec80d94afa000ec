package adapter

import (
	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/bus-booking/pkg/application"
	"github.com/mateusmacedo/bus-booking/pkg/domain"
	watermillAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/watermill/adapter"
)

type Options struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
}

// NewKafkaEventBus publica e consome eventos por kafka, um tópico por nome de evento.
func NewKafkaEventBus[E domain.Event[D], D any](opts Options, logger application.AppLogger) (*watermillAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   opts.Brokers,
		Marshaler: marshaler,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               opts.Brokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         opts.ConsumerGroup,
		OverwriteSaramaConfig: saramaSubscriberConfig(opts.ClientID),
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return watermillAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}

func saramaSubscriberConfig(clientID string) *sarama.Config {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	if clientID != "" {
		saramaConfig.ClientID = clientID
	}
	return saramaConfig
}
