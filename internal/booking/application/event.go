package application

import (
	"time"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

const (
	BookingCreatedEvent = "BookingCreated"
	BookingUpdatedEvent = "BookingUpdated"
	BookingDeletedEvent = "BookingDeleted"
)

// BookingEventData é o payload publicado após cada escrita bem-sucedida.
type BookingEventData struct {
	BookingID     string    `json:"bookingId"`
	PassengerName string    `json:"passengerName"`
	BusNumber     string    `json:"busNumber"`
	SeatNumber    string    `json:"seatNumber"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type (
	BookingEvent        = pkgDomain.Event[BookingEventData]
	BookingEventBus     = pkgApp.EventBus[BookingEvent, BookingEventData]
	BookingEventHandler = pkgApp.EventHandler[BookingEvent, BookingEventData]
)

// BookingEventNames lista todos os eventos publicados pelo slice.
var BookingEventNames = []string{BookingCreatedEvent, BookingUpdatedEvent, BookingDeletedEvent}

func NewBookingEvent(name string, booking domain.Booking, occurredAt time.Time) BookingEvent {
	return pkgDomain.NewEvent(name, BookingEventData{
		BookingID:     booking.ID,
		PassengerName: booking.PassengerName,
		BusNumber:     booking.BusNumber,
		SeatNumber:    booking.SeatNumber,
		OccurredAt:    occurredAt,
	})
}
