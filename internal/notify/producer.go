package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"venue-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams status-change notification requests to the dispatcher
// topic. Delivery is the dispatcher's business; the booking core only emits.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) PublishStatusChange(n models.NotificationRequest) error {
	msgBytes, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(n.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// LogPublisher stands in for kafka when it is disabled; notifications are
// printed instead of published.
type LogPublisher struct{}

func (LogPublisher) PublishStatusChange(n models.NotificationRequest) error {
	fmt.Printf("notification [%s] -> %s: %s\n", n.Severity, n.RecipientID, n.Message)
	return nil
}
