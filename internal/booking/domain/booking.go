package domain

import (
	"context"
	"strings"
	"time"
)

// Booking liga um passageiro a um assento de um ônibus.
type Booking struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"`
	PassengerName string    `json:"passengerName" gorm:"not null;index"`
	BusNumber     string    `json:"busNumber" gorm:"not null;uniqueIndex:idx_bookings_bus_seat"`
	SeatNumber    string    `json:"seatNumber" gorm:"not null;uniqueIndex:idx_bookings_bus_seat"`
	CreatedAt     time.Time `json:"createdAt" gorm:"not null"`
}

// BookingFields são os dados informados pelo passageiro ao criar uma reserva.
type BookingFields struct {
	PassengerName string
	BusNumber     string
	SeatNumber    string
}

// Trimmed devolve uma cópia sem espaços nas pontas.
func (f BookingFields) Trimmed() BookingFields {
	return BookingFields{
		PassengerName: strings.TrimSpace(f.PassengerName),
		BusNumber:     strings.TrimSpace(f.BusNumber),
		SeatNumber:    strings.TrimSpace(f.SeatNumber),
	}
}

// Blank lista, na ordem do formulário, os campos vazios.
func (f BookingFields) Blank() []string {
	var blank []string
	if strings.TrimSpace(f.PassengerName) == "" {
		blank = append(blank, "passengerName")
	}
	if strings.TrimSpace(f.BusNumber) == "" {
		blank = append(blank, "busNumber")
	}
	if strings.TrimSpace(f.SeatNumber) == "" {
		blank = append(blank, "seatNumber")
	}
	return blank
}

// Patch converte os campos numa atualização completa.
func (f BookingFields) Patch() BookingPatch {
	return BookingPatch{
		PassengerName: &f.PassengerName,
		BusNumber:     &f.BusNumber,
		SeatNumber:    &f.SeatNumber,
	}
}

// BookingPatch é uma atualização parcial; campos nil são mantidos.
type BookingPatch struct {
	PassengerName *string
	BusNumber     *string
	SeatNumber    *string
}

// Apply devolve b com os campos presentes no patch. ID e CreatedAt nunca mudam.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.PassengerName != nil {
		b.PassengerName = *p.PassengerName
	}
	if p.BusNumber != nil {
		b.BusNumber = *p.BusNumber
	}
	if p.SeatNumber != nil {
		b.SeatNumber = *p.SeatNumber
	}
	return b
}

// BookingRepository é a coleção autoritativa de reservas.
//
// FindByID, Update e Delete devolvem ErrBookingNotFound quando o id não
// existe. Create e Update devolvem ErrSeatTaken se o próprio armazenamento
// detectar o par ônibus/assento repetido.
type BookingRepository interface {
	List(ctx context.Context) ([]Booking, error)
	FindByID(ctx context.Context, id string) (Booking, error)
	FindByPassengerName(ctx context.Context, passengerName string) ([]Booking, error)
	Create(ctx context.Context, fields BookingFields) (Booking, error)
	Update(ctx context.Context, id string, patch BookingPatch) (Booking, error)
	Delete(ctx context.Context, id string) (Booking, error)
	// IsSeatTaken ignora a reserva excludeID quando ele não é vazio.
	IsSeatTaken(ctx context.Context, busNumber, seatNumber, excludeID string) (bool, error)
}

// SeatLocker serializa verificação e escrita para o mesmo par ônibus/assento.
type SeatLocker interface {
	Lock(ctx context.Context, busNumber, seatNumber string) (unlock func(), err error)
}

// SeatKey é a chave usada pelos locks e índices de assento.
func SeatKey(busNumber, seatNumber string) string {
	return busNumber + "\x00" + seatNumber
}
