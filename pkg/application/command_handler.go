package application

import (
	"context"

	"github.com/mateusmacedo/bus-booking/pkg/domain"
)

// CommandHandler define a interface para manipuladores de comando.
// R é o resultado devolvido ao chamador, por exemplo a entidade persistida.
type CommandHandler[C domain.Command[T], T any, R any] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// CommandBus define a interface para o barramento de comandos.
type CommandBus[C domain.Command[T], T any, R any] interface {
	RegisterHandler(commandName string, handler CommandHandler[C, T, R]) // Registra um manipulador de comando
	Dispatch(ctx context.Context, command C) (R, error)                 // Despacha um comando
}
