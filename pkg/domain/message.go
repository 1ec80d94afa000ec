package domain

// Command representa uma intenção de alterar o estado do sistema.
type Command[T any] interface {
	CommandName() string
	Payload() T
}

// Query representa uma leitura sem efeitos colaterais.
type Query[T any] interface {
	QueryName() string
	Payload() T
}

// Event representa algo que já aconteceu no sistema.
type Event[T any] interface {
	EventName() string
	Payload() T
}

// message é a base comum das implementações privadas de Command, Query e Event.
type message[T any] struct {
	name    string
	payload T
}

func (m message[T]) CommandName() string { return m.name }
func (m message[T]) QueryName() string   { return m.name }
func (m message[T]) EventName() string   { return m.name }
func (m message[T]) Payload() T          { return m.payload }

// NewCommand cria um comando com o nome e o payload informados.
func NewCommand[T any](name string, payload T) Command[T] {
	return message[T]{name: name, payload: payload}
}

// NewQuery cria uma consulta com o nome e o payload informados.
func NewQuery[T any](name string, payload T) Query[T] {
	return message[T]{name: name, payload: payload}
}

// NewEvent cria um evento com o nome e o payload informados.
func NewEvent[T any](name string, payload T) Event[T] {
	return message[T]{name: name, payload: payload}
}
