package nsq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/retry"
)

// Producer handles publishing messages to NSQ topics
type Producer struct {
	producer *nsq.Producer
	retrier  *retry.Retrier
}

// NewProducer creates a new NSQ producer
func NewProducer(address string) (*Producer, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ producer: %w", err)
	}

	// Ping the NSQ daemon to ensure connectivity
	if err := producer.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping NSQ daemon: %w", err)
	}

	retrier := retry.New(retry.Config{
		MaxRetries: 2,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   500 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     true,
	})

	return &Producer{producer: producer, retrier: retrier}, nil
}

// Publish sends a JSON-encoded message to the specified topic. Transient
// daemon errors are retried with backoff before giving up.
func (p *Producer) Publish(topic string, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.retrier.Do(context.Background(), "nsq publish "+topic, func(ctx context.Context) error {
		return p.producer.Publish(topic, msgBytes)
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logger.Debug("Published message", logger.String("topic", topic))
	return nil
}

// Stop gracefully stops the producer
func (p *Producer) Stop() {
	p.producer.Stop()
}
