package notify

import (
	"context"
	"encoding/json"
	"log"

	"venue-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// Consumer drains the status-change topic on the dispatcher side.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start reads notification requests until the context is cancelled and hands
// each one to the handler.
func (c *Consumer) Start(ctx context.Context, handler func(n models.NotificationRequest)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("error reading notification message: %v", err)
			continue
		}

		var n models.NotificationRequest
		if err := json.Unmarshal(msg.Value, &n); err != nil {
			log.Printf("failed to unmarshal notification: %v", err)
			continue
		}

		handler(n)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
