package application

import (
	"context"

	"github.com/mateusmacedo/bus-booking/pkg/domain"
)

// QueryHandler responde a uma consulta sem alterar estado. R costuma ser
// uma fatia de entidades, mesmo quando a consulta busca um único registro.
type QueryHandler[Q domain.Query[D], D any, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// QueryBus encaminha cada consulta ao handler registrado para o seu nome.
// Registrar de novo o mesmo nome substitui o handler anterior.
type QueryBus[Q domain.Query[D], D any, R any] interface {
	RegisterHandler(queryName string, handler QueryHandler[Q, D, R])
	Dispatch(ctx context.Context, query Q) (R, error)
}
