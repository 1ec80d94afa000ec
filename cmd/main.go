package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/bus-booking/internal/booking"
	"github.com/mateusmacedo/bus-booking/internal/booking/application"
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	"github.com/mateusmacedo/bus-booking/internal/booking/infrastructure"
	"github.com/mateusmacedo/bus-booking/internal/config"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
	pkgInfra "github.com/mateusmacedo/bus-booking/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/channels/adapter"
	"github.com/mateusmacedo/bus-booking/pkg/infrastructure/httpserver"
	kafkaAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/redis/adapter"
	zapAdapter "github.com/mateusmacedo/bus-booking/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{App: cfg.Log.App, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, appLogger)
	stop()

	if err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Servidor encerrado com erro", err, nil)
		_ = zapAdapter.Sync(appLogger)
		os.Exit(1)
	}
	appLogger.Info(context.Background(), "Servidor encerrado", nil)
	_ = zapAdapter.Sync(appLogger)
}

func run(ctx context.Context, cfg config.Config, appLogger pkgApp.AppLogger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				pkgApp.LogError(context.Background(), appLogger, "Erro ao liberar recurso", err, nil)
			}
		}
	}()

	var redisClient redis.UniversalClient
	if cfg.UsesRedis() {
		redisClient = redisAdapter.NewRedisClient(redisAdapter.ClientOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, redisClient)
		if err := redisAdapter.Ping(ctx, redisClient); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	repository, err := openRepository(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if cfg.Store.Seed {
		created, err := infrastructure.Seed(ctx, repository, infrastructure.SampleBookings)
		if err != nil {
			return err
		}
		appLogger.Info(ctx, "Reservas de exemplo carregadas", map[string]interface{}{"created": created})
	}

	var seatLocker domain.SeatLocker = infrastructure.NewLocalSeatLocker()
	if cfg.SeatLock.Driver == "redis" {
		seatLocker = infrastructure.NewRedisSeatLocker(redisClient, cfg.SeatLock.TTL, cfg.SeatLock.RetryWait, appLogger)
	}

	eventBus, closer, err := newEventBus(cfg, redisClient, appLogger)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	slice := booking.NewBookingSlice(booking.Dependencies{
		CommandBus:     pkgInfra.NewSimpleCommandBus[application.BookingCommand, application.BookingCommandData, domain.Booking](appLogger),
		QueryBus:       pkgInfra.NewSimpleQueryBus[application.BookingQuery, application.BookingQueryData, []domain.Booking](appLogger),
		EventBus:       eventBus,
		Repository:     repository,
		SeatLocker:     seatLocker,
		IDValidator:    pkgInfra.IsUUID,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         appLogger,
	})

	router := httpserver.NewRouter(appLogger)
	slice.RegisterRoutes(router)
	router.Route("/api", slice.RegisterRoutes)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "Server starting on:"+cfg.Server.Addr, map[string]interface{}{
			"store":     cfg.Store.Driver,
			"seat_lock": cfg.SeatLock.Driver,
			"events":    cfg.Events.Transport,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info(context.Background(), "Encerrando servidor...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg config.Config, appLogger pkgApp.AppLogger) (domain.BookingRepository, error) {
	if cfg.Store.Driver != "postgres" {
		return infrastructure.NewInMemoryBookingRepository(pkgInfra.GenerateUUID, appLogger), nil
	}

	db, err := infrastructure.OpenPostgres(cfg.Store.DSN, appLogger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if cfg.Store.Migrate {
		if err := infrastructure.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return infrastructure.NewGormBookingRepository(db, pkgInfra.GenerateUUID, appLogger), nil
}

func newEventBus(cfg config.Config, redisClient redis.UniversalClient, appLogger pkgApp.AppLogger) (application.BookingEventBus, io.Closer, error) {
	consumer := cfg.Events.Consumer
	if consumer == "" {
		consumer, _ = os.Hostname()
	}

	switch cfg.Events.Transport {
	case "channels":
		bus := channelsAdapter.NewGoChannelEventBus[application.BookingEvent, application.BookingEventData](appLogger)
		return bus, bus, nil
	case "redis":
		bus, err := redisAdapter.NewRedisEventBus[application.BookingEvent, application.BookingEventData](redisClient, redisAdapter.StreamOptions{
			ConsumerGroup: cfg.Events.ConsumerGroup,
			Consumer:      consumer,
		}, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus, nil
	case "kafka":
		bus, err := kafkaAdapter.NewKafkaEventBus[application.BookingEvent, application.BookingEventData](kafkaAdapter.Options{
			Brokers:       cfg.Kafka.Brokers,
			ConsumerGroup: cfg.Events.ConsumerGroup,
			ClientID:      cfg.Kafka.ClientID,
		}, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus, nil
	default:
		return pkgInfra.NewSimpleEventBus[application.BookingEvent, application.BookingEventData](appLogger), nil, nil
	}
}
