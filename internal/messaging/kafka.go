package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
)

// RatingEvent records one rating submission for the offline artifact-build
// step: the builder folds these into the user_ratings table before the next
// catalog/similarity rebuild.
type RatingEvent struct {
	EventID   uuid.UUID          `json:"event_id"`
	UserID    string             `json:"user_id"`
	Ratings   map[string]float64 `json:"ratings"`
	Timestamp time.Time          `json:"timestamp"`
}

// RatingEventProducer publishes rating events. Delivery is best effort; the
// serving path never fails a login over a broker problem.
type RatingEventProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewRatingEventProducer returns nil when no brokers are configured, which
// disables publishing entirely.
func NewRatingEventProducer(cfg *config.Config, logger *logrus.Logger) *RatingEventProducer {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, rating events disabled")
		return nil
	}

	return &RatingEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topics.RatingEvents,
			Balancer:     &kafka.Hash{}, // key by user for per-user ordering
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *RatingEventProducer) PublishRatings(ctx context.Context, userID string, ratings map[string]float64) error {
	event := RatingEvent{
		EventID:   uuid.New(),
		UserID:    userID,
		Ratings:   ratings,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rating event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish rating event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"ratings": len(ratings),
	}).Debug("Rating event published")
	return nil
}

func (p *RatingEventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
