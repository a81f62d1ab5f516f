package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/mq"
	"bustracker/internal/tracker/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher pushes accepted samples to the location_fanout
// exchange for external consumers. Implements out.EventPublisher.
type EventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

func NewEventPublisher(conn *mq.RabbitMQ, log *logger.Logger) *EventPublisher {
	return &EventPublisher{mq: conn, log: log}
}

func (p *EventPublisher) PublishLocationUpdate(ctx context.Context, sample domain.LocationSample) error {
	body, err := json.Marshal(domain.NewEnvelope(sample))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ch := p.mq.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(pubCtx,
		mq.LocationFanoutExchange,
		"",    // fanout ignores routing keys
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish location update: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:    "location_event_published",
		Message:   sample.ID,
		VehicleID: sample.VehicleID,
	})
	return nil
}
