package adapter

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/multierr"

	"github.com/mateusmacedo/bus-booking/pkg/application"
	"github.com/mateusmacedo/bus-booking/pkg/domain"
)

const eventNameMetadataKey = "event_name"

// WatermillEventBus publica eventos num tópico por nome de evento e os
// consome de volta pelo subscriber informado. Serve para qualquer
// transporte do watermill (gochannel, redis streams, kafka).
//
// Erros dos manipuladores são registrados e a mensagem é confirmada
// mesmo assim: eventos de reserva são notificações e não devem ficar
// presos em reentrega infinita.
type WatermillEventBus[E domain.Event[D], D any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[E, D]
	mu         sync.RWMutex
	logger     application.AppLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatermillEventBus[E domain.Event[D], D any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillEventBus[E, D] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RegisterHandler assina o tópico na primeira vez que um nome de evento
// aparece; registros seguintes só acrescentam manipuladores.
func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	_, subscribed := bus.handlers[eventName]
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	if subscribed {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handleMessage(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) handleMessage(eventName string, msg *message.Message) {
	defer msg.Ack()

	payload, err := application.UnmarshalPayload[D](msg.Payload)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		return
	}

	typedEvent, ok := interface{}(domain.NewEvent(eventName, payload)).(E)
	if !ok {
		application.LogError(bus.ctx, bus.logger, "error casting event", nil, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	var combined error
	for _, handler := range handlers {
		combined = multierr.Append(combined, handler.Handle(bus.ctx, typedEvent))
	}
	if combined != nil {
		application.LogError(bus.ctx, bus.logger, "error handling event", combined, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		return
	}

	application.LogDebug(bus.ctx, bus.logger, "event handled", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(eventNameMetadataKey, eventName)
	if err := bus.publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogDebug(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	return nil
}

// Close encerra as assinaturas e fecha publisher e subscriber.
func (bus *WatermillEventBus[E, D]) Close() error {
	bus.cancel()
	err := multierr.Combine(bus.publisher.Close(), bus.subscriber.Close())
	bus.wg.Wait()
	return err
}
