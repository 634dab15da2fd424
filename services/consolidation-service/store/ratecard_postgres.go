package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

// Fetch reads a destination's tiers from rate_card_tiers. It satisfies
// ratecard.Source so the cache can sit in front of the database.
func (s *PostgresStore) Fetch(ctx context.Context, country string) (models.RateTable, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT tier_key, price, currency, unit
        FROM rate_card_tiers
        WHERE country = $1`, country)
	if err != nil {
		return models.RateTable{}, shiperrors.Network("query rate card", err)
	}
	defer rows.Close()

	table := models.RateTable{Country: country, Prices: map[string]decimal.Decimal{}}
	for rows.Next() {
		var (
			key, currency, unit string
			price               decimal.Decimal
		)
		if err := rows.Scan(&key, &price, &currency, &unit); err != nil {
			return models.RateTable{}, fmt.Errorf("%w: scan rate card tier: %v", shiperrors.ErrConfiguration, err)
		}
		table.Prices[key] = price
		table.Currency = currency
		table.Unit = models.WeightUnit(unit)
	}
	if err := rows.Err(); err != nil {
		return models.RateTable{}, shiperrors.Network("read rate card", err)
	}
	if len(table.Prices) == 0 {
		return models.RateTable{}, fmt.Errorf("%w: no rate table for %s", shiperrors.ErrConfiguration, country)
	}
	return table, nil
}

// PutTier upserts one tier.
func (s *PostgresStore) PutTier(ctx context.Context, country, currency string, unit models.WeightUnit, key string, price decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rate_card_tiers (country, tier_key, price, currency, unit)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (country, tier_key)
        DO UPDATE SET price = EXCLUDED.price, currency = EXCLUDED.currency, unit = EXCLUDED.unit`,
		country, key, price, currency, string(unit))
	if err != nil {
		return fmt.Errorf("failed to upsert rate card tier: %w", err)
	}
	return nil
}
