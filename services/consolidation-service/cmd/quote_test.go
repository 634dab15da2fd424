package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "us.json")
	body := `{"country":"US","currency":"USD","unit":"kg","prices":{"0.5":500,"1":800,"2":1400}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestQuoteCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"quote", "--rates", writeTable(t), "--storage", "100", "1000", "0.5kg"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "total weight:  1.500 kg")
	assert.Contains(t, out.String(), "billed tier:   2 (2.000 kg)")
	assert.Contains(t, out.String(), "platform fee:  75 USD")
	assert.Contains(t, out.String(), "total:         1575 USD")
	assert.NotContains(t, out.String(), "warning")
}

func TestQuoteCommand_Capped(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runQuote(&QuoteOptions{RatesFile: writeTable(t), FeeRate: "0.05"}, []string{"5kg"}, &out))
	assert.Contains(t, out.String(), "warning")
	assert.Contains(t, out.String(), "shipping:      1400 USD")
}

func TestQuoteCommand_Errors(t *testing.T) {
	table := writeTable(t)
	tests := []struct {
		name    string
		opts    QuoteOptions
		weights []string
	}{
		{"missing file", QuoteOptions{RatesFile: filepath.Join(t.TempDir(), "nope.json"), FeeRate: "0.05"}, []string{"100"}},
		{"bad weight", QuoteOptions{RatesFile: table, FeeRate: "0.05"}, []string{"heavy"}},
		{"zero weight", QuoteOptions{RatesFile: table, FeeRate: "0.05"}, []string{"0"}},
		{"bad fee rate", QuoteOptions{RatesFile: table, FeeRate: "five"}, []string{"100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, runQuote(&tt.opts, tt.weights, &bytes.Buffer{}))
		})
	}
}

func TestParseGrams(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1200", 1200},
		{"1200g", 1200},
		{"1.2kg", 1200},
		{"0.0005KG", 1},
		{" 2kg ", 2000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseGrams(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := parseGrams("-1")
	assert.Error(t, err)
}
