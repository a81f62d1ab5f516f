package mq

import (
	"fmt"

	"bustracker/internal/shared/logger"
)

// LocationFanoutExchange receives every accepted location sample for
// external consumers (analytics, archival). Fanout: no routing keys.
const LocationFanoutExchange = "location_fanout"

// SetupTopology declares the exchanges. Idempotent.
func SetupTopology(mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	if err := ch.ExchangeDeclare(
		LocationFanoutExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", LocationFanoutExchange, err)
	}

	log.Info(logger.Entry{
		Action:  "rabbitmq_topology_ready",
		Message: fmt.Sprintf("exchange %s declared", LocationFanoutExchange),
	})
	return nil
}
