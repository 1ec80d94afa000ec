package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
)

// SampleBookings são as reservas de demonstração carregadas com store.seed.
var SampleBookings = []domain.BookingFields{
	{PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "A1"},
	{PassengerName: "Jane Smith", BusNumber: "BUS002", SeatNumber: "B5"},
	{PassengerName: "Mike Johnson", BusNumber: "BUS001", SeatNumber: "C3"},
	{PassengerName: "Sarah Wilson", BusNumber: "BUS003", SeatNumber: "A2"},
	{PassengerName: "David Brown", BusNumber: "BUS002", SeatNumber: "D1"},
}

// Seed grava as reservas informadas, pulando assentos já ocupados para
// que reiniciar o serviço sobre um banco existente não falhe.
func Seed(ctx context.Context, repository domain.BookingRepository, bookings []domain.BookingFields) (int, error) {
	created := 0
	for _, fields := range bookings {
		taken, err := repository.IsSeatTaken(ctx, fields.BusNumber, fields.SeatNumber, "")
		if err != nil {
			return created, fmt.Errorf("seed %s/%s: %w", fields.BusNumber, fields.SeatNumber, err)
		}
		if taken {
			continue
		}
		if _, err := repository.Create(ctx, fields); err != nil {
			if errors.Is(err, domain.ErrSeatTaken) {
				continue
			}
			return created, fmt.Errorf("seed %s/%s: %w", fields.BusNumber, fields.SeatNumber, err)
		}
		created++
	}
	return created, nil
}
