package application

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

const (
	msgFieldsRequired  = "All fields are required: passengerName, busNumber, seatNumber"
	msgInvalidID       = "Invalid booking ID format"
	msgBookingNotFound = "Booking not found"
	msgNameNotFound    = "No booking found for this passenger name"
)

// BookingService aplica as regras de validação e de unicidade de assento
// em volta das primitivas do repositório.
type BookingService struct {
	repository domain.BookingRepository
	locker     domain.SeatLocker
	validID    pkgDomain.IDValidator[string]
	logger     pkgApp.AppLogger
}

type ServiceOption func(*BookingService)

// WithIDValidator define o formato aceito para ids vindos de fora na atualização.
func WithIDValidator(validator pkgDomain.IDValidator[string]) ServiceOption {
	return func(s *BookingService) {
		s.validID = validator
	}
}

func NewBookingService(repository domain.BookingRepository, locker domain.SeatLocker, logger pkgApp.AppLogger, opts ...ServiceOption) *BookingService {
	s := &BookingService{
		repository: repository,
		locker:     locker,
		validID:    func(id string) bool { return strings.TrimSpace(id) != "" },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.repository.List(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "list bookings", Err: err}
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	booking, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return domain.Booking{}, s.translate("get booking", err)
	}
	return booking, nil
}

// SearchByName decodifica o nome vindo da URL e devolve a reserva mais
// antiga cujo nome de passageiro coincide, sem diferenciar maiúsculas.
func (s *BookingService) SearchByName(ctx context.Context, name string) (domain.Booking, error) {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Booking{}, &domain.NotFoundError{Message: msgNameNotFound}
	}

	matches, err := s.repository.FindByPassengerName(ctx, name)
	if err != nil {
		return domain.Booking{}, &domain.StoreError{Op: "search booking", Err: err}
	}
	if len(matches) == 0 {
		return domain.Booking{}, &domain.NotFoundError{Message: msgNameNotFound}
	}
	if len(matches) > 1 {
		pkgApp.LogDebug(ctx, s.logger, "multiple bookings share the passenger name", map[string]interface{}{
			"passenger_name": name,
			"matches":        len(matches),
		})
	}
	return matches[0], nil
}

func (s *BookingService) CreateBooking(ctx context.Context, passengerName, busNumber, seatNumber string) (domain.Booking, error) {
	fields := domain.BookingFields{PassengerName: passengerName, BusNumber: busNumber, SeatNumber: seatNumber}
	if len(fields.Blank()) > 0 {
		return domain.Booking{}, &domain.ValidationError{Message: msgFieldsRequired}
	}
	fields = fields.Trimmed()

	unlock, err := s.locker.Lock(ctx, fields.BusNumber, fields.SeatNumber)
	if err != nil {
		return domain.Booking{}, &domain.StoreError{Op: "lock seat", Err: err}
	}
	defer unlock()

	taken, err := s.repository.IsSeatTaken(ctx, fields.BusNumber, fields.SeatNumber, "")
	if err != nil {
		return domain.Booking{}, &domain.StoreError{Op: "check seat", Err: err}
	}
	if taken {
		return domain.Booking{}, &domain.ConflictError{BusNumber: fields.BusNumber, SeatNumber: fields.SeatNumber}
	}

	booking, err := s.repository.Create(ctx, fields)
	if err != nil {
		if errors.Is(err, domain.ErrSeatTaken) {
			return domain.Booking{}, &domain.ConflictError{BusNumber: fields.BusNumber, SeatNumber: fields.SeatNumber}
		}
		return domain.Booking{}, &domain.StoreError{Op: "create booking", Err: err}
	}
	return booking, nil
}

// UpdateBooking substitui os três campos da reserva. A verificação de
// assento ignora a própria reserva, então manter o mesmo assento é válido.
func (s *BookingService) UpdateBooking(ctx context.Context, id, passengerName, busNumber, seatNumber string) (domain.Booking, error) {
	fields := domain.BookingFields{PassengerName: passengerName, BusNumber: busNumber, SeatNumber: seatNumber}
	if len(fields.Blank()) > 0 {
		return domain.Booking{}, &domain.ValidationError{Message: msgFieldsRequired}
	}
	if !s.validID(id) {
		return domain.Booking{}, &domain.ValidationError{Message: msgInvalidID}
	}
	fields = fields.Trimmed()

	unlock, err := s.locker.Lock(ctx, fields.BusNumber, fields.SeatNumber)
	if err != nil {
		return domain.Booking{}, &domain.StoreError{Op: "lock seat", Err: err}
	}
	defer unlock()

	if _, err := s.repository.FindByID(ctx, id); err != nil {
		return domain.Booking{}, s.translate("get booking", err)
	}

	taken, err := s.repository.IsSeatTaken(ctx, fields.BusNumber, fields.SeatNumber, id)
	if err != nil {
		return domain.Booking{}, &domain.StoreError{Op: "check seat", Err: err}
	}
	if taken {
		return domain.Booking{}, &domain.ConflictError{BusNumber: fields.BusNumber, SeatNumber: fields.SeatNumber}
	}

	booking, err := s.repository.Update(ctx, id, fields.Patch())
	if err != nil {
		if errors.Is(err, domain.ErrSeatTaken) {
			return domain.Booking{}, &domain.ConflictError{BusNumber: fields.BusNumber, SeatNumber: fields.SeatNumber}
		}
		return domain.Booking{}, s.translate("update booking", err)
	}
	return booking, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) (domain.Booking, error) {
	booking, err := s.repository.Delete(ctx, id)
	if err != nil {
		return domain.Booking{}, s.translate("delete booking", err)
	}
	return booking, nil
}

func (s *BookingService) translate(op string, err error) error {
	if errors.Is(err, domain.ErrBookingNotFound) {
		return &domain.NotFoundError{Message: msgBookingNotFound}
	}
	return &domain.StoreError{Op: op, Err: err}
}
