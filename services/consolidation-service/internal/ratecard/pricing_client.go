// services/consolidation-service/internal/ratecard/pricing_client.go
package ratecard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

// PricingClient reads rate tables from the pricing service:
//
//	GET {baseURL}/rate-table/{COUNTRY} -> {"0.5": 500, "1": 800, "2": 1400}
type PricingClient struct {
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewPricingClient builds a client. A zero timeout means 10s.
func NewPricingClient(baseURL string, timeout time.Duration, currency string) *PricingClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PricingClient{
		baseURL:    baseURL,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (p *PricingClient) Fetch(ctx context.Context, country string) (models.RateTable, error) {
	endpoint, err := url.JoinPath(p.baseURL, "rate-table", country)
	if err != nil {
		return models.RateTable{}, fmt.Errorf("%w: pricing service url: %v", shiperrors.ErrConfiguration, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.RateTable{}, shiperrors.Network("build rate table request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.RateTable{}, shiperrors.Network("fetch rate table", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return models.RateTable{}, fmt.Errorf("%w: no rate table for %s", shiperrors.ErrConfiguration, country)
	case resp.StatusCode >= http.StatusInternalServerError:
		return models.RateTable{}, shiperrors.Network("fetch rate table",
			fmt.Errorf("%w: status %s", shiperrors.ErrUpstreamUnavailable, resp.Status))
	default:
		return models.RateTable{}, shiperrors.Network("fetch rate table", fmt.Errorf("status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.RateTable{}, shiperrors.Network("read rate table", err)
	}
	var prices map[string]decimal.Decimal
	if err := json.Unmarshal(body, &prices); err != nil {
		return models.RateTable{}, fmt.Errorf("%w: decode rate table for %s: %v", shiperrors.ErrConfiguration, country, err)
	}
	if len(prices) == 0 {
		return models.RateTable{}, fmt.Errorf("%w: empty rate table for %s", shiperrors.ErrConfiguration, country)
	}

	return models.RateTable{
		Country:  country,
		Currency: p.currency,
		Unit:     models.Kilograms,
		Prices:   prices,
	}, nil
}
