package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"venue-booking/internal/config"
	"venue-booking/internal/logger"
	"venue-booking/internal/models"
	"venue-booking/internal/notify"
)

// The notify worker stands in for the external notification dispatcher: it
// drains the status-change topic and records every request it would deliver.
func main() {
	log := logger.NewLogger()
	defer log.Close()

	_ = godotenv.Load()

	cfg := config.Load()

	consumer := notify.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.StatusChanged, cfg.Kafka.GroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())

	go consumer.Start(ctx, func(n models.NotificationRequest) {
		log.Info("NOTIFY", fmt.Sprintf("[%s] to %s (event %s): %s", n.Severity, n.RecipientID, n.EventID, n.Message))
	})

	log.Info("APP", fmt.Sprintf("Notify worker consuming %s", cfg.Kafka.Topics.StatusChanged))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	log.Info("APP", "Notify worker shutdown complete")
}
