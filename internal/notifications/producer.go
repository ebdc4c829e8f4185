package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinebook/internal/booking"
	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/samber/lo"
)

// Producer publishes ticket events for downstream delivery.
type Producer interface {
	booking.Notifier
	Close() error
}

// kafkaProducer is the real implementation, active when Kafka is enabled.
type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
	now      func() time.Time
}

// NewProducer connects a synchronous Kafka producer. When Kafka is disabled
// in the configuration it returns a producer that drops events after
// logging them, so the payment path works identically in both setups.
func NewProducer(cfg config.KafkaConfig, log *logger.Logger) (Producer, error) {
	if !cfg.Enabled {
		log.Info("kafka disabled, ticket events will be logged only")
		return &noopProducer{log: log}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	// Key by booking so replays of one booking stay in order.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		topic:    cfg.Topic,
		log:      log,
		now:      time.Now,
	}, nil
}

func (p *kafkaProducer) TicketsIssued(ctx context.Context, b *booking.Booking) error {
	event := eventFromBooking(b, p.now().UTC())
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BookingID),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish ticket event: %w", err)
	}

	p.log.InfoWithContext(ctx, "ticket event published", map[string]interface{}{
		"booking_id": event.BookingID,
		"topic":      p.topic,
		"partition":  partition,
		"offset":     offset,
	})
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}

// noopProducer keeps local development working without a broker.
type noopProducer struct {
	log *logger.Logger
}

func (p *noopProducer) TicketsIssued(ctx context.Context, b *booking.Booking) error {
	p.log.InfoWithContext(ctx, "ticket event (kafka disabled)", map[string]interface{}{
		"booking_id": b.ID.String(),
		"email":      b.Email,
		"seat_ids":   b.SeatIDs(),
	})
	return nil
}

func (p *noopProducer) Close() error { return nil }

func eventFromBooking(b *booking.Booking, paidAt time.Time) TicketIssuedEvent {
	seats := lo.Map(b.Seats, func(seat booking.BookingSeat, _ int) TicketSeat {
		return TicketSeat{
			SeatID:     seat.SeatID.String(),
			TicketType: seat.TicketType,
			UnitPrice:  seat.UnitPrice,
		}
	})
	return TicketIssuedEvent{
		BookingID:  b.ID.String(),
		ShowingID:  b.ShowingID.String(),
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		Email:      b.Email,
		Seats:      seats,
		TotalPrice: b.TotalPrice,
		PaidAt:     paidAt,
	}
}
