package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"venue-booking/internal/auth"
	"venue-booking/internal/booking"
	"venue-booking/internal/booking/api"
	bookingdb "venue-booking/internal/booking/db"
	rediswrap "venue-booking/internal/booking/redis"
	"venue-booking/internal/config"
	"venue-booking/internal/database/migrations"
	kafkautil "venue-booking/internal/kafka"
	"venue-booking/internal/logger"
	"venue-booking/internal/notify"
	"venue-booking/internal/sweeper"
	"venue-booking/internal/venue"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		if err = sqldb.PingContext(ctx); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting venue booking service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	if cfg.Migrations.Auto {
		runner := migrations.NewRunner(bunDB, cfg.Migrations.Dir)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	} else {
		bookingdb.Migrate(bunDB)
	}

	var notifier booking.NotificationPublisher
	if cfg.Kafka.Enabled {
		if err := kafkautil.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.StatusChanged}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.StatusChanged)
		defer producer.Close()
		notifier = producer
		log.Info("KAFKA", fmt.Sprintf("Publishing status changes to %s", cfg.Kafka.Topics.StatusChanged))
	} else {
		notifier = notify.LogPublisher{}
		log.Warn("KAFKA", "Kafka disabled, notifications are logged only")
	}

	service := booking.NewBookingService(
		&bookingdb.DB{Bun: bunDB},
		&venue.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient),
		notifier,
	)
	handler := &api.Handler{Service: service, Logger: log}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Get("/venues", handler.ListVenues)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", handler.ProposeEvent)
			r.Get("/", handler.ListEvents)
			r.Get("/{eventID}", handler.GetEvent)
			r.Post("/{eventID}/settlement", handler.SettleEvent)
			r.Post("/{eventID}/registrations", handler.RegisterForEvent)
			r.Post("/{eventID}/collaborators/{clubID}/accept", handler.AcceptCollaboration)
			r.With(auth.RequireAdmin).Post("/{eventID}/decision", handler.DecideEvent)
		})

		r.With(auth.RequireAdmin).Post("/admin/sweep", handler.RunSweep)
	})

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sw := sweeper.New(service, log, cfg.Sweep.Interval)
	go sw.Run(sweepCtx)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("APP", fmt.Sprintf("Venue booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("APP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("APP", "Shutdown signal received")

	stopSweeper()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("APP", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("APP", "Server exited gracefully")
}
