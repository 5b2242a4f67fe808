package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/watertax"
)

var (
	quoteState  string
	quoteAsOf   string
	quoteName   string
	quoteTariff string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Print the breakdown (or reminder) for a tax-state JSON file",
	Long: `quote evaluates a water-tax snapshot without starting the server.

  watertax quote --state state.json --as-of 2026-08-15
  watertax quote --state state.json --name "Asha" --as-of 2026-08-15

With --name the reminder text is printed instead of the breakdown.`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteState, "state", "-", "tax-state JSON file, - for stdin")
	quoteCmd.Flags().StringVar(&quoteAsOf, "as-of", "", "reference instant, RFC3339 or YYYY-MM-DD (default: now)")
	quoteCmd.Flags().StringVar(&quoteName, "name", "", "customer name; prints the reminder text")
	quoteCmd.Flags().StringVar(&quoteTariff, "tariff", "", "YAML/JSON tariff file")
}

func runQuote(cmd *cobra.Command, args []string) error {
	state, err := readState(cmd.InOrStdin(), quoteState)
	if err != nil {
		return err
	}

	at := time.Now().UTC()
	if quoteAsOf != "" {
		if at, err = generic.ParseInstant(quoteAsOf); err != nil {
			return err
		}
	}

	engine, err := loadEngine(quoteTariff)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cmd.Flags().Changed("name") {
		text, ok, err := engine.GenerateReminderText(state, quoteName, at)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "No pending water tax.")
			return nil
		}
		fmt.Fprintln(out, text)
		return nil
	}

	breakdown, err := engine.DetailedBreakdown(state, at)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(breakdown)
}

func readState(stdin io.Reader, path string) (watertax.WaterTaxState, error) {
	var state watertax.WaterTaxState

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return state, fmt.Errorf("open state: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return state, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}
