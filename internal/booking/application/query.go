package application

import (
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

const (
	ListBookingsQuery      = "ListBookings"
	GetBookingQuery        = "GetBooking"
	FindBookingByNameQuery = "FindBookingByName"
)

// BookingQueryData contém os filtros das consultas. Consultas de um único
// registro devolvem uma fatia com exatamente um elemento.
type BookingQueryData struct {
	ID            string `json:"id,omitempty"`
	PassengerName string `json:"passengerName,omitempty"`
}

type (
	BookingQuery        = pkgDomain.Query[BookingQueryData]
	BookingQueryBus     = pkgApp.QueryBus[BookingQuery, BookingQueryData, []domain.Booking]
	BookingQueryHandler = pkgApp.QueryHandler[BookingQuery, BookingQueryData, []domain.Booking]
)

func NewListBookingsQuery() BookingQuery {
	return pkgDomain.NewQuery(ListBookingsQuery, BookingQueryData{})
}

func NewGetBookingQuery(id string) BookingQuery {
	return pkgDomain.NewQuery(GetBookingQuery, BookingQueryData{ID: id})
}

func NewFindBookingByNameQuery(passengerName string) BookingQuery {
	return pkgDomain.NewQuery(FindBookingByNameQuery, BookingQueryData{PassengerName: passengerName})
}
