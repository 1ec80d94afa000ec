package domain

// IDGenerator gera identificadores para novas entidades.
type IDGenerator[T any] func() T

// IDValidator informa se um identificador recebido de fora tem o formato esperado.
type IDValidator[T any] func(id T) bool
