package application_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/bus-booking/internal/booking/application"
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	"github.com/mateusmacedo/bus-booking/internal/booking/infrastructure"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgInfra "github.com/mateusmacedo/bus-booking/pkg/infrastructure"
)

func newService(t *testing.T) (*application.BookingService, *infrastructure.InMemoryBookingRepository) {
	t.Helper()
	repo := infrastructure.NewInMemoryBookingRepository(pkgInfra.GenerateUUID, pkgApp.NopLogger{})
	service := application.NewBookingService(repo, infrastructure.NewLocalSeatLocker(), pkgApp.NopLogger{},
		application.WithIDValidator(pkgInfra.IsUUID))
	return service, repo
}

func mustCreate(t *testing.T, service *application.BookingService, name, bus, seat string) domain.Booking {
	t.Helper()
	booking, err := service.CreateBooking(context.Background(), name, bus, seat)
	require.NoError(t, err)
	return booking
}

// failingRepository só implementa os métodos usados em cada teste.
type failingRepository struct {
	domain.BookingRepository
	err error
}

func (r failingRepository) List(context.Context) ([]domain.Booking, error) { return nil, r.err }

func (r failingRepository) FindByID(context.Context, string) (domain.Booking, error) {
	return domain.Booking{}, r.err
}

func (r failingRepository) FindByPassengerName(context.Context, string) ([]domain.Booking, error) {
	return nil, r.err
}

func (r failingRepository) IsSeatTaken(context.Context, string, string, string) (bool, error) {
	return false, r.err
}

func (r failingRepository) Delete(context.Context, string) (domain.Booking, error) {
	return domain.Booking{}, r.err
}

func TestBookingService_CreateBooking(t *testing.T) {
	service, _ := newService(t)

	booking, err := service.CreateBooking(context.Background(), "  John Doe ", " BUS001", "A1 ")

	require.NoError(t, err)
	assert.True(t, pkgInfra.IsUUID(booking.ID))
	assert.Equal(t, "John Doe", booking.PassengerName)
	assert.Equal(t, "BUS001", booking.BusNumber)
	assert.Equal(t, "A1", booking.SeatNumber)
	assert.False(t, booking.CreatedAt.IsZero())

	stored, err := service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking, stored)
}

func TestBookingService_CreateBooking_RequiresAllFields(t *testing.T) {
	service, repo := newService(t)

	cases := [][3]string{
		{"", "BUS001", "A1"},
		{"John Doe", "   ", "A1"},
		{"John Doe", "BUS001", ""},
		{"", "", ""},
	}
	for _, fields := range cases {
		_, err := service.CreateBooking(context.Background(), fields[0], fields[1], fields[2])
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.EqualError(t, err, "All fields are required: passengerName, busNumber, seatNumber")
	}

	bookings, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_CreateBooking_SeatConflict(t *testing.T) {
	service, _ := newService(t)
	mustCreate(t, service, "John Doe", "BUS001", "A1")

	_, err := service.CreateBooking(context.Background(), "Jane Smith", "BUS001", " A1 ")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Seat A1 is already taken on bus BUS001")

	// mesmo assento em outro ônibus é permitido
	_, err = service.CreateBooking(context.Background(), "Jane Smith", "BUS002", "A1")
	assert.NoError(t, err)
}

func TestBookingService_CreateBooking_ConcurrentRequestsForOneSeat(t *testing.T) {
	service, repo := newService(t)

	var succeeded, conflicted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateBooking(context.Background(), "Passenger", "BUS001", "A1")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicted.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(49), conflicted.Load())

	bookings, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBookingService_CreateBooking_LockFailure(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.CreateBooking(ctx, "John Doe", "BUS001", "A1")

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBookingService_GetBooking_NotFound(t *testing.T) {
	service, _ := newService(t)

	_, err := service.GetBooking(context.Background(), pkgInfra.GenerateUUID())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Booking not found")
}

func TestBookingService_ListBookings(t *testing.T) {
	service, _ := newService(t)

	empty, err := service.ListBookings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := mustCreate(t, service, "John Doe", "BUS001", "A1")
	second := mustCreate(t, service, "Jane Smith", "BUS002", "B5")

	bookings, err := service.ListBookings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Booking{first, second}, bookings)
}

func TestBookingService_SearchByName(t *testing.T) {
	service, _ := newService(t)
	first := mustCreate(t, service, "John Doe", "BUS001", "A1")
	mustCreate(t, service, "john doe", "BUS002", "A1")

	cases := []string{"John Doe", "JOHN DOE", "John%20Doe", "  john doe  "}
	for _, name := range cases {
		booking, err := service.SearchByName(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, first.ID, booking.ID, name)
	}
}

func TestBookingService_SearchByName_NotFound(t *testing.T) {
	service, _ := newService(t)
	mustCreate(t, service, "John Doe", "BUS001", "A1")

	for _, name := range []string{"Jane", "John", "", "   "} {
		_, err := service.SearchByName(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrNotFound, name)
		assert.EqualError(t, err, "No booking found for this passenger name", name)
	}
}

func TestBookingService_UpdateBooking(t *testing.T) {
	service, _ := newService(t)
	booking := mustCreate(t, service, "John Doe", "BUS001", "A1")

	updated, err := service.UpdateBooking(context.Background(), booking.ID, "John Q. Doe", "BUS001", "A1")
	require.NoError(t, err, "keeping the same seat is not a conflict")
	assert.Equal(t, "John Q. Doe", updated.PassengerName)
	assert.Equal(t, booking.ID, updated.ID)
	assert.Equal(t, booking.CreatedAt, updated.CreatedAt)

	moved, err := service.UpdateBooking(context.Background(), booking.ID, "John Q. Doe", " BUS002 ", "C3")
	require.NoError(t, err)
	assert.Equal(t, "BUS002", moved.BusNumber)
	assert.Equal(t, "C3", moved.SeatNumber)

	_, err = service.CreateBooking(context.Background(), "Jane Smith", "BUS001", "A1")
	assert.NoError(t, err, "previous seat must be free after the move")
}

func TestBookingService_UpdateBooking_Errors(t *testing.T) {
	service, _ := newService(t)
	booking := mustCreate(t, service, "John Doe", "BUS001", "A1")
	mustCreate(t, service, "Jane Smith", "BUS001", "B5")

	_, err := service.UpdateBooking(context.Background(), booking.ID, "John Doe", "BUS001", "B5")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Seat B5 is already taken on bus BUS001")

	_, err = service.UpdateBooking(context.Background(), booking.ID, "John Doe", "", "B5")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.UpdateBooking(context.Background(), "not-a-uuid", "John Doe", "BUS001", "A1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, "Invalid booking ID format")

	_, err = service.UpdateBooking(context.Background(), pkgInfra.GenerateUUID(), "John Doe", "BUS001", "Z9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	current, err := service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking, current, "failed updates must not change the booking")
}

func TestBookingService_DeleteBooking(t *testing.T) {
	service, _ := newService(t)
	booking := mustCreate(t, service, "John Doe", "BUS001", "A1")

	deleted, err := service.DeleteBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking, deleted)

	_, err = service.GetBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.DeleteBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.CreateBooking(context.Background(), "Jane Smith", "BUS001", "A1")
	assert.NoError(t, err)
}

func TestBookingService_StoreFailures(t *testing.T) {
	boom := errors.New("disk on fire")
	service := application.NewBookingService(failingRepository{err: boom}, infrastructure.NewLocalSeatLocker(), pkgApp.NopLogger{})
	ctx := context.Background()

	_, err := service.ListBookings(ctx)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, boom)

	_, err = service.GetBooking(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrStore)

	_, err = service.SearchByName(ctx, "John Doe")
	assert.ErrorIs(t, err, domain.ErrStore)

	_, err = service.CreateBooking(ctx, "John Doe", "BUS001", "A1")
	assert.ErrorIs(t, err, domain.ErrStore)

	_, err = service.UpdateBooking(ctx, "1", "John Doe", "BUS001", "A1")
	assert.ErrorIs(t, err, domain.ErrStore)

	_, err = service.DeleteBooking(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrStore)
}
