package booking

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/bus-booking/internal/booking/application"
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	"github.com/mateusmacedo/bus-booking/internal/booking/infrastructure"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

type BookingSlice struct {
	httpHandler *infrastructure.BookingHTTPHandler
	service     *application.BookingService
}

// Dependencies reúne o que o slice precisa receber de fora.
type Dependencies struct {
	CommandBus     application.BookingCommandBus
	QueryBus       application.BookingQueryBus
	EventBus       application.BookingEventBus
	Repository     domain.BookingRepository
	SeatLocker     domain.SeatLocker
	IDValidator    pkgDomain.IDValidator[string]
	RequestTimeout time.Duration
	Logger         pkgApp.AppLogger
}

func NewBookingSlice(deps Dependencies) *BookingSlice {
	var opts []application.ServiceOption
	if deps.IDValidator != nil {
		opts = append(opts, application.WithIDValidator(deps.IDValidator))
	}
	service := application.NewBookingService(deps.Repository, deps.SeatLocker, deps.Logger, opts...)

	deps.CommandBus.RegisterHandler(application.CreateBookingCommand, application.NewCreateBookingHandler(service, deps.EventBus, deps.Logger))
	deps.CommandBus.RegisterHandler(application.UpdateBookingCommand, application.NewUpdateBookingHandler(service, deps.EventBus, deps.Logger))
	deps.CommandBus.RegisterHandler(application.DeleteBookingCommand, application.NewDeleteBookingHandler(service, deps.EventBus, deps.Logger))

	deps.QueryBus.RegisterHandler(application.ListBookingsQuery, application.NewListBookingsHandler(service, deps.Logger))
	deps.QueryBus.RegisterHandler(application.GetBookingQuery, application.NewGetBookingHandler(service, deps.Logger))
	deps.QueryBus.RegisterHandler(application.FindBookingByNameQuery, application.NewFindBookingByNameHandler(service, deps.Logger))

	eventHandler := application.NewBookingEventLogHandler(deps.Logger)
	for _, name := range application.BookingEventNames {
		deps.EventBus.RegisterHandler(name, eventHandler)
	}

	return &BookingSlice{
		httpHandler: infrastructure.NewBookingHTTPHandler(deps.CommandBus, deps.QueryBus, deps.RequestTimeout, deps.Logger),
		service:     service,
	}
}

func (s *BookingSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}

func (s *BookingSlice) Service() *application.BookingService {
	return s.service
}
