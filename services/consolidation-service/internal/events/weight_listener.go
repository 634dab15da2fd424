package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
	sharedkafka "github.com/Tanmoy095/VaultShip/shared/kafka"
)

// ItemInvalidator records an item's new weight and clears every estimate
// that includes it.
type ItemInvalidator interface {
	InvalidateItem(ctx context.Context, itemID string, weightGrams int64) (int, error)
}

// WeightUpdateHandler consumes vault_item.weight_updated messages. A
// malformed message is logged and skipped; an invalidation failure is
// returned so the message is redelivered.
func WeightUpdateHandler(inv ItemInvalidator, log *logger.Logger) sharedkafka.Handler {
	log = logger.OrNop(log)
	return func(ctx context.Context, key, value []byte) error {
		var evt contracts.ItemWeightUpdated
		if err := json.Unmarshal(value, &evt); err != nil {
			log.Warn("skipping malformed weight update", "key", string(key), "error", err)
			return nil
		}
		if evt.VaultItemID == "" {
			log.Warn("skipping weight update without item id", "key", string(key))
			return nil
		}

		n, err := inv.InvalidateItem(ctx, evt.VaultItemID, evt.WeightGrams)
		if err != nil {
			return fmt.Errorf("invalidate estimates for item %s: %w", evt.VaultItemID, err)
		}
		if n > 0 {
			log.Info("estimates invalidated by weight update",
				"vault_item_id", evt.VaultItemID, "weight_grams", evt.WeightGrams, "sessions", n)
		}
		return nil
	}
}
