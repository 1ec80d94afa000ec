package infrastructure

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
)

func newMemoryRepository() *InMemoryBookingRepository {
	return NewInMemoryBookingRepository(SequentialIDs(), pkgApp.NopLogger{})
}

func TestInMemoryRepository_CreateAndFind(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.BookingFields{PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "A1"})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = repo.FindByID(ctx, "2")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestInMemoryRepository_ListKeepsInsertionOrder(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = Seed(ctx, repo, SampleBookings)
	require.NoError(t, err)

	bookings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, len(SampleBookings))
	for i, booking := range bookings {
		assert.Equal(t, SampleBookings[i].PassengerName, booking.PassengerName)
	}
}

func TestInMemoryRepository_SeatIndex(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, domain.BookingFields{PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "A1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.BookingFields{PassengerName: "Jane Smith", BusNumber: "BUS001", SeatNumber: "A1"})
	assert.ErrorIs(t, err, domain.ErrSeatTaken)

	taken, err := repo.IsSeatTaken(ctx, "BUS001", "A1", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.IsSeatTaken(ctx, "BUS001", "A1", first.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.IsSeatTaken(ctx, "BUS002", "A1", "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestInMemoryRepository_UpdateMovesSeat(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()

	booking, err := repo.Create(ctx, domain.BookingFields{PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "A1"})
	require.NoError(t, err)
	other, err := repo.Create(ctx, domain.BookingFields{PassengerName: "Jane Smith", BusNumber: "BUS001", SeatNumber: "B1"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, booking.ID, domain.BookingFields{PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "C1"}.Patch())
	require.NoError(t, err)
	assert.Equal(t, "C1", updated.SeatNumber)
	assert.Equal(t, booking.CreatedAt, updated.CreatedAt)

	taken, err := repo.IsSeatTaken(ctx, "BUS001", "A1", "")
	require.NoError(t, err)
	assert.False(t, taken, "old seat must be released")

	_, err = repo.Update(ctx, other.ID, domain.BookingFields{PassengerName: "Jane Smith", BusNumber: "BUS001", SeatNumber: "C1"}.Patch())
	assert.ErrorIs(t, err, domain.ErrSeatTaken)

	_, err = repo.Update(ctx, "missing", domain.BookingPatch{})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestInMemoryRepository_FindByPassengerName(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()
	_, err := Seed(ctx, repo, SampleBookings)
	require.NoError(t, err)

	matches, err := repo.FindByPassengerName(ctx, "jane smith")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "BUS002", matches[0].BusNumber)

	matches, err = repo.FindByPassengerName(ctx, "Jane")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInMemoryRepository_Delete(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()
	_, err := Seed(ctx, repo, SampleBookings)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", deleted.PassengerName)

	_, err = repo.Delete(ctx, "2")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	bookings, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, len(SampleBookings)-1)

	_, err = repo.Create(ctx, domain.BookingFields{PassengerName: "New", BusNumber: "BUS002", SeatNumber: "B5"})
	assert.NoError(t, err, "deleted seat must be free again")
}

func TestInMemoryRepository_RegeneratesCollidingIDs(t *testing.T) {
	ids := []string{"x", "x", "y"}
	var mu sync.Mutex
	repo := NewInMemoryBookingRepository(func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		ids = ids[1:]
		return id
	}, pkgApp.NopLogger{})
	ctx := context.Background()

	first, err := repo.Create(ctx, domain.BookingFields{PassengerName: "A", BusNumber: "BUS001", SeatNumber: "A1"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, domain.BookingFields{PassengerName: "B", BusNumber: "BUS001", SeatNumber: "A2"})
	require.NoError(t, err)

	assert.Equal(t, "x", first.ID)
	assert.Equal(t, "y", second.ID)
}
