package application

import (
	"context"
	"time"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
)

// eventPublisher publica o evento de uma escrita já confirmada. Falhas de
// publicação ficam no log: a reserva já existe e não deve ser desfeita.
type eventPublisher struct {
	eventBus BookingEventBus
	logger   pkgApp.AppLogger
}

func (p eventPublisher) publish(ctx context.Context, name string, booking domain.Booking) {
	event := NewBookingEvent(name, booking, time.Now().UTC())
	if err := p.eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, p.logger, "Erro ao publicar evento", err, map[string]interface{}{
			"event_name": name,
			"booking_id": booking.ID,
		})
	}
}

func checkContext(ctx context.Context, logger pkgApp.AppLogger) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}
	return nil
}

type createBookingHandler struct {
	service *BookingService
	events  eventPublisher
	logger  pkgApp.AppLogger
}

func (h *createBookingHandler) Handle(ctx context.Context, command BookingCommand) (domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return domain.Booking{}, err
	}

	data := command.Payload()
	h.logger.Info(ctx, "Criando reserva", map[string]interface{}{
		"bus_number":  data.BusNumber,
		"seat_number": data.SeatNumber,
	})

	booking, err := h.service.CreateBooking(ctx, data.PassengerName, data.BusNumber, data.SeatNumber)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao criar reserva", err, map[string]interface{}{
			"bus_number":  data.BusNumber,
			"seat_number": data.SeatNumber,
		})
		return domain.Booking{}, err
	}

	h.events.publish(ctx, BookingCreatedEvent, booking)
	pkgApp.LogInfo(ctx, h.logger, "Reserva criada com sucesso", map[string]interface{}{"booking": booking})
	return booking, nil
}

func NewCreateBookingHandler(service *BookingService, eventBus BookingEventBus, logger pkgApp.AppLogger) BookingCommandHandler {
	return &createBookingHandler{
		service: service,
		events:  eventPublisher{eventBus: eventBus, logger: logger},
		logger:  logger,
	}
}

type updateBookingHandler struct {
	service *BookingService
	events  eventPublisher
	logger  pkgApp.AppLogger
}

func (h *updateBookingHandler) Handle(ctx context.Context, command BookingCommand) (domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return domain.Booking{}, err
	}

	data := command.Payload()
	booking, err := h.service.UpdateBooking(ctx, data.ID, data.PassengerName, data.BusNumber, data.SeatNumber)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao atualizar reserva", err, map[string]interface{}{"booking_id": data.ID})
		return domain.Booking{}, err
	}

	h.events.publish(ctx, BookingUpdatedEvent, booking)
	pkgApp.LogInfo(ctx, h.logger, "Reserva atualizada com sucesso", map[string]interface{}{"booking": booking})
	return booking, nil
}

func NewUpdateBookingHandler(service *BookingService, eventBus BookingEventBus, logger pkgApp.AppLogger) BookingCommandHandler {
	return &updateBookingHandler{
		service: service,
		events:  eventPublisher{eventBus: eventBus, logger: logger},
		logger:  logger,
	}
}

type deleteBookingHandler struct {
	service *BookingService
	events  eventPublisher
	logger  pkgApp.AppLogger
}

func (h *deleteBookingHandler) Handle(ctx context.Context, command BookingCommand) (domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return domain.Booking{}, err
	}

	data := command.Payload()
	booking, err := h.service.DeleteBooking(ctx, data.ID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao excluir reserva", err, map[string]interface{}{"booking_id": data.ID})
		return domain.Booking{}, err
	}

	h.events.publish(ctx, BookingDeletedEvent, booking)
	pkgApp.LogInfo(ctx, h.logger, "Reserva excluída", map[string]interface{}{"booking_id": booking.ID})
	return booking, nil
}

func NewDeleteBookingHandler(service *BookingService, eventBus BookingEventBus, logger pkgApp.AppLogger) BookingCommandHandler {
	return &deleteBookingHandler{
		service: service,
		events:  eventPublisher{eventBus: eventBus, logger: logger},
		logger:  logger,
	}
}

type listBookingsHandler struct {
	service *BookingService
	logger  pkgApp.AppLogger
}

func (h *listBookingsHandler) Handle(ctx context.Context, _ BookingQuery) ([]domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return nil, err
	}

	bookings, err := h.service.ListBookings(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao listar reservas", err, nil)
		return nil, err
	}

	pkgApp.LogDebug(ctx, h.logger, "Reservas listadas", map[string]interface{}{"count": len(bookings)})
	return bookings, nil
}

func NewListBookingsHandler(service *BookingService, logger pkgApp.AppLogger) BookingQueryHandler {
	return &listBookingsHandler{service: service, logger: logger}
}

type getBookingHandler struct {
	service *BookingService
	logger  pkgApp.AppLogger
}

func (h *getBookingHandler) Handle(ctx context.Context, query BookingQuery) ([]domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return nil, err
	}

	data := query.Payload()
	booking, err := h.service.GetBooking(ctx, data.ID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar reserva", err, map[string]interface{}{"booking_id": data.ID})
		return nil, err
	}
	return []domain.Booking{booking}, nil
}

func NewGetBookingHandler(service *BookingService, logger pkgApp.AppLogger) BookingQueryHandler {
	return &getBookingHandler{service: service, logger: logger}
}

type findBookingByNameHandler struct {
	service *BookingService
	logger  pkgApp.AppLogger
}

func (h *findBookingByNameHandler) Handle(ctx context.Context, query BookingQuery) ([]domain.Booking, error) {
	if err := checkContext(ctx, h.logger); err != nil {
		return nil, err
	}

	data := query.Payload()
	booking, err := h.service.SearchByName(ctx, data.PassengerName)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao encontrar reserva", err, map[string]interface{}{"passenger_name": data.PassengerName})
		return nil, err
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva encontrada", map[string]interface{}{"booking_id": booking.ID})
	return []domain.Booking{booking}, nil
}

func NewFindBookingByNameHandler(service *BookingService, logger pkgApp.AppLogger) BookingQueryHandler {
	return &findBookingByNameHandler{service: service, logger: logger}
}

type bookingEventLogHandler struct {
	logger pkgApp.AppLogger
}

func (h *bookingEventLogHandler) Handle(ctx context.Context, event BookingEvent) error {
	if err := checkContext(ctx, h.logger); err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "Evento recebido", map[string]interface{}{
		"event_name": event.EventName(),
		"event":      event.Payload(),
	})
	return nil
}

// NewBookingEventLogHandler registra no log cada evento de reserva recebido.
func NewBookingEventLogHandler(logger pkgApp.AppLogger) BookingEventHandler {
	return &bookingEventLogHandler{logger: logger}
}
