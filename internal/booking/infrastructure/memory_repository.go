package infrastructure

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
)

// InMemoryBookingRepository guarda as reservas num mapa protegido por
// RWMutex. A ordem de inserção é mantida para que List seja estável.
type InMemoryBookingRepository struct {
	mu          sync.RWMutex
	data        map[string]domain.Booking
	order       []string
	seats       map[string]string
	idGenerator pkgDomain.IDGenerator[string]
	now         func() time.Time
	logger      pkgApp.AppLogger
}

func NewInMemoryBookingRepository(idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger) *InMemoryBookingRepository {
	return &InMemoryBookingRepository{
		data:        make(map[string]domain.Booking),
		seats:       make(map[string]string),
		idGenerator: idGenerator,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// SequentialIDs gera "1", "2", "3"... como a versão de demonstração fazia.
func SequentialIDs() pkgDomain.IDGenerator[string] {
	var next atomic.Int64
	return func() string {
		return strconv.FormatInt(next.Add(1), 10)
	}
}

func (r *InMemoryBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]domain.Booking, 0, len(r.order))
	for _, id := range r.order {
		bookings = append(bookings, r.data[id])
	}
	return bookings, nil
}

func (r *InMemoryBookingRepository) FindByID(ctx context.Context, id string) (domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, exists := r.data[id]
	if !exists {
		pkgApp.LogDebug(ctx, r.logger, "booking not found", map[string]interface{}{"id": id})
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return booking, nil
}

func (r *InMemoryBookingRepository) FindByPassengerName(ctx context.Context, passengerName string) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []domain.Booking
	for _, id := range r.order {
		if booking := r.data[id]; strings.EqualFold(booking.PassengerName, passengerName) {
			bookings = append(bookings, booking)
		}
	}

	pkgApp.LogDebug(ctx, r.logger, "bookings found", map[string]interface{}{
		"passengerName": passengerName,
		"count":         len(bookings),
	})
	return bookings, nil
}

func (r *InMemoryBookingRepository) Create(ctx context.Context, fields domain.BookingFields) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.SeatKey(fields.BusNumber, fields.SeatNumber)
	if _, taken := r.seats[key]; taken {
		return domain.Booking{}, domain.ErrSeatTaken
	}

	id := r.idGenerator()
	for _, exists := r.data[id]; exists; _, exists = r.data[id] {
		id = r.idGenerator()
	}

	booking := domain.Booking{
		ID:            id,
		PassengerName: fields.PassengerName,
		BusNumber:     fields.BusNumber,
		SeatNumber:    fields.SeatNumber,
		CreatedAt:     r.now(),
	}
	r.data[id] = booking
	r.order = append(r.order, id)
	r.seats[key] = id

	pkgApp.LogInfo(ctx, r.logger, "booking saved", map[string]interface{}{"booking": booking})
	return booking, nil
}

func (r *InMemoryBookingRepository) Update(ctx context.Context, id string, patch domain.BookingPatch) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.data[id]
	if !exists {
		pkgApp.LogDebug(ctx, r.logger, "booking not found", map[string]interface{}{"id": id})
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	updated := patch.Apply(current)
	oldKey := domain.SeatKey(current.BusNumber, current.SeatNumber)
	newKey := domain.SeatKey(updated.BusNumber, updated.SeatNumber)
	if newKey != oldKey {
		if owner, taken := r.seats[newKey]; taken && owner != id {
			return domain.Booking{}, domain.ErrSeatTaken
		}
		delete(r.seats, oldKey)
		r.seats[newKey] = id
	}
	r.data[id] = updated

	pkgApp.LogInfo(ctx, r.logger, "booking updated", map[string]interface{}{"booking": updated})
	return updated, nil
}

func (r *InMemoryBookingRepository) Delete(ctx context.Context, id string) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, exists := r.data[id]
	if !exists {
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	delete(r.data, id)
	delete(r.seats, domain.SeatKey(booking.BusNumber, booking.SeatNumber))
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	pkgApp.LogInfo(ctx, r.logger, "booking deleted", map[string]interface{}{"booking": booking})
	return booking, nil
}

func (r *InMemoryBookingRepository) IsSeatTaken(ctx context.Context, busNumber, seatNumber, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, taken := r.seats[domain.SeatKey(busNumber, seatNumber)]
	if !taken {
		return false, nil
	}
	return excludeID == "" || owner != excludeID, nil
}
