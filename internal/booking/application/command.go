package application

import (
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

const (
	CreateBookingCommand = "CreateBooking"
	UpdateBookingCommand = "UpdateBooking"
	DeleteBookingCommand = "DeleteBooking"
)

// BookingCommandData contém os dados dos comandos de escrita.
// ID é ignorado na criação; os demais campos são ignorados na exclusão.
type BookingCommandData struct {
	ID            string `json:"id,omitempty"`
	PassengerName string `json:"passengerName,omitempty"`
	BusNumber     string `json:"busNumber,omitempty"`
	SeatNumber    string `json:"seatNumber,omitempty"`
}

type (
	BookingCommand        = pkgDomain.Command[BookingCommandData]
	BookingCommandBus     = pkgApp.CommandBus[BookingCommand, BookingCommandData, domain.Booking]
	BookingCommandHandler = pkgApp.CommandHandler[BookingCommand, BookingCommandData, domain.Booking]
)

func NewCreateBookingCommand(passengerName, busNumber, seatNumber string) BookingCommand {
	return pkgDomain.NewCommand(CreateBookingCommand, BookingCommandData{
		PassengerName: passengerName,
		BusNumber:     busNumber,
		SeatNumber:    seatNumber,
	})
}

func NewUpdateBookingCommand(id, passengerName, busNumber, seatNumber string) BookingCommand {
	return pkgDomain.NewCommand(UpdateBookingCommand, BookingCommandData{
		ID:            id,
		PassengerName: passengerName,
		BusNumber:     busNumber,
		SeatNumber:    seatNumber,
	})
}

func NewDeleteBookingCommand(id string) BookingCommand {
	return pkgDomain.NewCommand(DeleteBookingCommand, BookingCommandData{ID: id})
}
