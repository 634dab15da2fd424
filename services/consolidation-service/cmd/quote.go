package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/estimator"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	RatesFile   string
	StorageCost int64
	FeeRate     string
}

func newQuoteCommand() *cobra.Command {
	opts := &QuoteOptions{}

	cmd := &cobra.Command{
		Use:   "quote <weight>...",
		Short: "Price a set of item weights against a rate table file",
		Long: `Price a consolidated shipment offline.

Weights are grams unless suffixed with "kg". The rate table file is JSON:
  {"country":"US","currency":"USD","unit":"kg","prices":{"0.5":500,"1":800,"2":1400}}

Example:
  vaultship quote --rates us.json --storage 100 1000 500g 0.25kg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.RatesFile, "rates", "", "path to rate table JSON (required)")
	cmd.Flags().Int64Var(&opts.StorageCost, "storage", 0, "storage cost in minor currency units")
	cmd.Flags().StringVar(&opts.FeeRate, "fee-rate", estimator.DefaultPlatformFeeRate.String(), "platform fee rate")
	_ = cmd.MarkFlagRequired("rates")

	return cmd
}

func runQuote(opts *QuoteOptions, weights []string, out io.Writer) error {
	raw, err := os.ReadFile(opts.RatesFile)
	if err != nil {
		return fmt.Errorf("read rate table: %w", err)
	}
	var table models.RateTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return fmt.Errorf("parse rate table %s: %w", opts.RatesFile, err)
	}
	if table.Unit == "" {
		table.Unit = models.Kilograms
	}

	rate, err := decimal.NewFromString(opts.FeeRate)
	if err != nil {
		return fmt.Errorf("invalid --fee-rate %q: %w", opts.FeeRate, err)
	}

	items := make([]models.VaultItem, 0, len(weights))
	for i, w := range weights {
		g, err := parseGrams(w)
		if err != nil {
			return err
		}
		items = append(items, models.VaultItem{ID: fmt.Sprintf("item-%d", i+1), WeightGrams: &g, Selected: true})
	}

	q, err := estimator.New(rate).Estimate(items, table, opts.StorageCost)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "destination:   %s\n", table.Country)
	fmt.Fprintf(out, "items:         %d\n", q.Selection.TotalCount)
	fmt.Fprintf(out, "total weight:  %.3f kg\n", models.GramsToKilograms(q.Selection.TotalWeightGrams))
	fmt.Fprintf(out, "billed tier:   %s (%.3f kg)\n", q.Resolution.TierKey, models.GramsToKilograms(q.Resolution.ChargeableGrams))
	if q.Resolution.IsCapped {
		fmt.Fprintln(out, "warning:       weight exceeds the largest tier; billed at the top tier")
	}
	b := q.Breakdown
	fmt.Fprintf(out, "shipping:      %d %s\n", b.ShippingCost, b.Currency)
	fmt.Fprintf(out, "storage:       %d %s\n", b.StorageCost, b.Currency)
	fmt.Fprintf(out, "platform fee:  %d %s\n", b.PlatformFee, b.Currency)
	fmt.Fprintf(out, "total:         %d %s\n", b.TotalCost, b.Currency)
	return nil
}

// parseGrams accepts "1200", "1200g" or "1.2kg".
func parseGrams(s string) (int64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if kg, ok := strings.CutSuffix(v, "kg"); ok {
		d, err := decimal.NewFromString(kg)
		if err != nil || d.IsNegative() {
			return 0, fmt.Errorf("invalid weight %q", s)
		}
		return d.Shift(3).Round(0).IntPart(), nil
	}
	v = strings.TrimSuffix(v, "g")
	g, err := strconv.ParseInt(v, 10, 64)
	if err != nil || g < 0 {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	return g, nil
}
