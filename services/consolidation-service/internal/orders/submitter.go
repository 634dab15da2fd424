// services/consolidation-service/internal/orders/submitter.go
package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
)

// QueuePublisher is satisfied by rabbitmq.RabbitmqClient.
type QueuePublisher interface {
	Publish(ctx context.Context, queueName, messageID string, body []byte) error
}

// Submitter hands finished order requests to the order service queue.
// It never retries: a resend is the user's decision.
type Submitter struct {
	publisher QueuePublisher
	queue     string
	log       *logger.Logger
	newID     func() uuid.UUID
}

func NewSubmitter(publisher QueuePublisher, queue string, log *logger.Logger) *Submitter {
	return &Submitter{
		publisher: publisher,
		queue:     queue,
		log:       logger.OrNop(log).With("queue", queue),
		newID:     uuid.New,
	}
}

// Submit publishes req and returns the message id it was sent with.
func (s *Submitter) Submit(ctx context.Context, req contracts.ShipmentOrderRequest) (string, error) {
	if req.ShippingAddressID == "" {
		return "", shiperrors.ErrMissingAddress
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	messageID := s.newID().String()
	if err := s.publisher.Publish(ctx, s.queue, messageID, body); err != nil {
		s.log.Error("order submission failed", "vault_id", req.VaultID, "message_id", messageID, "error", err)
		return "", shiperrors.Network("submit order", err)
	}
	s.log.Info("order submitted",
		"vault_id", req.VaultID,
		"message_id", messageID,
		"destination", req.DestinationCountry,
		"total_cost", req.TotalCost,
	)
	return messageID, nil
}
