package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/bus-booking/pkg/application"
	"github.com/mateusmacedo/bus-booking/pkg/domain"
)

var ErrNoQueryHandler = errors.New("no handler registered for query")

type simpleQueryBus[Q domain.Query[D], D any, R any] struct {
	handlers map[string]application.QueryHandler[Q, D, R]
	mu       sync.RWMutex
	logger   application.AppLogger
}

func NewSimpleQueryBus[Q domain.Query[D], D any, R any](logger application.AppLogger) application.QueryBus[Q, D, R] {
	return &simpleQueryBus[Q, D, R]{
		handlers: make(map[string]application.QueryHandler[Q, D, R]),
		logger:   logger,
	}
}

func (bus *simpleQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

// Dispatch executa o handler numa goroutine para que o chamador possa
// desistir quando o contexto expirar.
func (bus *simpleQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[query.QueryName()]
	bus.mu.RUnlock()

	var zero R
	if !found {
		LogError(ctx, bus.logger, "query dispatch failed", ErrNoQueryHandler, map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, ErrNoQueryHandler
	}

	resultChan := make(chan R, 1)
	errChan := make(chan error, 1)

	go func() {
		result, err := handler.Handle(ctx, query)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- result
	}()

	select {
	case <-ctx.Done():
		LogError(ctx, bus.logger, "query abandoned", ctx.Err(), map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, ctx.Err()
	case result := <-resultChan:
		return result, nil
	case err := <-errChan:
		return zero, err
	}
}
