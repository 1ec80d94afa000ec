package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/bus-booking/pkg/domain"
	gormAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/gorm/adapter"
)

const slowQueryThreshold = 200 * time.Millisecond

type gormBookingRepository struct {
	db          *gorm.DB
	idGenerator pkgDomain.IDGenerator[string]
	now         func() time.Time
	logger      pkgApp.AppLogger
}

// OpenPostgres abre a conexão com erros traduzidos, para que violações do
// índice único cheguem como gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string, logger pkgApp.AppLogger) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormAdapter.NewGormLoggerAdapter(logger, slowQueryThreshold),
	})
}

// Migrate cria ou ajusta a tabela de reservas e o índice único de assento.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&domain.Booking{})
}

func NewGormBookingRepository(db *gorm.DB, idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger) domain.BookingRepository {
	return &gormBookingRepository{
		db:          db,
		idGenerator: idGenerator,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

func (r *gormBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&bookings).Error; err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to list bookings", err, nil)
		return nil, err
	}
	return bookings, nil
}

func (r *gormBookingRepository) FindByID(ctx context.Context, id string) (domain.Booking, error) {
	var booking domain.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		pkgApp.LogError(ctx, r.logger, "failed to find booking", err, map[string]interface{}{"id": id})
		return domain.Booking{}, err
	}
	return booking, nil
}

func (r *gormBookingRepository) FindByPassengerName(ctx context.Context, passengerName string) ([]domain.Booking, error) {
	var bookings []domain.Booking

	err := r.db.WithContext(ctx).
		Where("LOWER(passenger_name) = LOWER(?)", passengerName).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to find bookings", err, map[string]interface{}{
			"passengerName": passengerName,
		})
		return nil, err
	}

	pkgApp.LogDebug(ctx, r.logger, "bookings found", map[string]interface{}{
		"passengerName": passengerName,
		"count":         len(bookings),
	})
	return bookings, nil
}

func (r *gormBookingRepository) Create(ctx context.Context, fields domain.BookingFields) (domain.Booking, error) {
	booking := domain.Booking{
		ID:            r.idGenerator(),
		PassengerName: fields.PassengerName,
		BusNumber:     fields.BusNumber,
		SeatNumber:    fields.SeatNumber,
		CreatedAt:     r.now(),
	}

	if err := r.db.WithContext(ctx).Create(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Booking{}, domain.ErrSeatTaken
		}
		pkgApp.LogError(ctx, r.logger, "failed to save booking", err, map[string]interface{}{"booking": booking})
		return domain.Booking{}, err
	}

	pkgApp.LogInfo(ctx, r.logger, "booking saved", map[string]interface{}{"booking": booking})
	return booking, nil
}

func (r *gormBookingRepository) Update(ctx context.Context, id string, patch domain.BookingPatch) (domain.Booking, error) {
	changes := make(map[string]interface{}, 3)
	if patch.PassengerName != nil {
		changes["passenger_name"] = *patch.PassengerName
	}
	if patch.BusNumber != nil {
		changes["bus_number"] = *patch.BusNumber
	}
	if patch.SeatNumber != nil {
		changes["seat_number"] = *patch.SeatNumber
	}
	if len(changes) == 0 {
		return r.FindByID(ctx, id)
	}

	result := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).Updates(changes)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Booking{}, domain.ErrSeatTaken
		}
		pkgApp.LogError(ctx, r.logger, "failed to update booking", err, map[string]interface{}{"id": id})
		return domain.Booking{}, err
	}
	if result.RowsAffected == 0 {
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	pkgApp.LogInfo(ctx, r.logger, "booking updated", map[string]interface{}{"id": id})
	return r.FindByID(ctx, id)
}

// Delete remove e devolve a reserva numa única instrução DELETE ... RETURNING.
func (r *gormBookingRepository) Delete(ctx context.Context, id string) (domain.Booking, error) {
	var deleted []domain.Booking

	result := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&deleted)
	if err := result.Error; err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to delete booking", err, map[string]interface{}{"id": id})
		return domain.Booking{}, err
	}
	if len(deleted) == 0 {
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	pkgApp.LogInfo(ctx, r.logger, "booking deleted", map[string]interface{}{"booking": deleted[0]})
	return deleted[0], nil
}

func (r *gormBookingRepository) IsSeatTaken(ctx context.Context, busNumber, seatNumber, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("bus_number = ? AND seat_number = ?", busNumber, seatNumber)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to check seat", err, map[string]interface{}{
			"busNumber":  busNumber,
			"seatNumber": seatNumber,
		})
		return false, err
	}
	return count > 0, nil
}
