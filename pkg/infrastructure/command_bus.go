package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/bus-booking/pkg/application"
	"github.com/mateusmacedo/bus-booking/pkg/domain"
)

var ErrNoCommandHandler = errors.New("no handler registered for command")

type simpleCommandBus[C domain.Command[D], D any, R any] struct {
	handlers map[string]application.CommandHandler[C, D, R]
	mu       sync.RWMutex
	logger   application.AppLogger
}

// NewSimpleCommandBus cria um barramento de comandos síncrono, em processo.
func NewSimpleCommandBus[C domain.Command[D], D any, R any](logger application.AppLogger) application.CommandBus[C, D, R] {
	return &simpleCommandBus[C, D, R]{
		handlers: make(map[string]application.CommandHandler[C, D, R]),
		logger:   logger,
	}
}

func (bus *simpleCommandBus[C, D, R]) RegisterHandler(commandName string, handler application.CommandHandler[C, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler
}

func (bus *simpleCommandBus[C, D, R]) Dispatch(ctx context.Context, command C) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[command.CommandName()]
	bus.mu.RUnlock()

	if !found {
		var zero R
		LogError(ctx, bus.logger, "command dispatch failed", ErrNoCommandHandler, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return zero, ErrNoCommandHandler
	}

	application.LogDebug(ctx, bus.logger, "dispatching command", map[string]interface{}{
		"command_name": command.CommandName(),
	})
	return handler.Handle(ctx, command)
}
