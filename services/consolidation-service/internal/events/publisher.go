// services/consolidation-service/internal/events/publisher.go
package events

import (
	"context"
	"time"

	pkgkafka "github.com/Tanmoy095/VaultShip/pkg/kafka"
	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
)

// Publisher emits checkout events. Publishing is best effort: a failure is
// logged and never fails the checkout step that triggered it.
type Publisher struct {
	producer pkgkafka.Publisher
	log      *logger.Logger
	clock    func() time.Time
	timeout  time.Duration
}

// NewPublisher returns a publisher; a nil producer makes every call a no-op.
func NewPublisher(producer pkgkafka.Publisher, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.OrNop(log),
		clock:    time.Now,
		timeout:  5 * time.Second,
	}
}

func (p *Publisher) EstimateCalculated(ctx context.Context, sessionID string, est models.ShipmentEstimate) {
	p.publish(ctx, sessionID, contracts.EventEstimateCalculated, contracts.EstimateCalculated{
		SessionID:          sessionID,
		EstimateID:         est.ID.String(),
		DestinationCountry: est.DestinationCountry,
		TotalWeightGrams:   est.TotalWeightGrams,
		ChargeableTier:     est.Resolution.TierKey,
		IsCapped:           est.Resolution.IsCapped,
		Currency:           est.Breakdown.Currency,
		TotalCost:          est.Breakdown.TotalCost,
		VaultItemIDs:       est.SelectedItemIDs,
	})
}

func (p *Publisher) EstimateInvalidated(ctx context.Context, sessionID string, est models.ShipmentEstimate, reason string) {
	p.publish(ctx, sessionID, contracts.EventEstimateInvalidated, contracts.EstimateInvalidated{
		SessionID:  sessionID,
		EstimateID: est.ID.String(),
		Reason:     reason,
	})
}

func (p *Publisher) OrderSubmitted(ctx context.Context, sessionID, messageID string, order contracts.ShipmentOrderRequest) {
	p.publish(ctx, sessionID, contracts.EventOrderSubmitted, contracts.OrderSubmitted{
		SessionID: sessionID,
		MessageID: messageID,
		Order:     order,
	})
}

func (p *Publisher) publish(ctx context.Context, key, name string, payload interface{}) {
	if p == nil || p.producer == nil {
		return
	}
	// The event outlives the request that caused it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	event := contracts.Event{Event: name, OccurredAt: p.clock().UTC(), Payload: payload}
	if err := p.producer.Publish(ctx, key, event); err != nil {
		p.log.Warn("event publish failed", "event", name, "key", key, "error", err)
	}
}
