package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/municipal/watertax/watertax"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	quoteState, quoteAsOf, quoteName, quoteTariff = "-", "", "", ""

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		quoteCmd.Flags().Lookup("name").Changed = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestQuote_Breakdown(t *testing.T) {
	out, err := runRoot(t, `{}`, "quote", "--as-of", "2026-08-15")
	require.NoError(t, err)

	var got watertax.Breakdown
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Counts.PendingQuarters)
	assert.Equal(t, 1, got.Counts.QuartersWithPenalty)
	assert.Equal(t, "₹3.64", got.TotalPenaltyAmount.String())
}

func TestQuote_Reminder(t *testing.T) {
	out, err := runRoot(t, `{}`, "quote", "--as-of", "2026-08-15", "--name", "Asha")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Dear Asha, Water Tax Reminder: "))
}

func TestQuote_BadAsOf(t *testing.T) {
	_, err := runRoot(t, `{}`, "quote", "--as-of", "yesterday")
	assert.Error(t, err)
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("loud")
	assert.Error(t, err)

	logger, err := newLogger("DEBUG")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadEngine_Default(t *testing.T) {
	engine, err := loadEngine("")
	require.NoError(t, err)
	assert.Equal(t, "₹730.00", engine.Tariff().AnnualAmount().String())
}
