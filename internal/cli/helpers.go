package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/query"
	"github.com/clerkbill/clerk/internal/store"
)

// openFacade opens the history log and wraps it in the query façade.
// Open failures are command errors: the log is unreadable or corrupt, not a
// bad argument.
func openFacade(opts *RootOptions) (*query.Facade, error) {
	slog.Debug("opening history log", "path", opts.File)
	s, err := store.Open(opts.File)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open history log", err)
	}
	slog.Debug("history log loaded", "events", s.Len())
	return query.New(s), nil
}

// failure wraps a domain precondition error for exit code reporting.
func failure(err error) error {
	return WrapExitError(ExitFailure, "command rejected", err)
}

// parseRate builds an hourly rate from amount and currency strings.
func parseRate(amount, code string) (event.Rate, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return event.Rate{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	money, err := event.NewMoney(code, value)
	if err != nil {
		return event.Rate{}, err
	}
	return event.Rate{Amount: money, Per: event.UnitHour}, nil
}

// parseTaxes parses repeated name=rate pairs, rate as a fraction (0.08).
func parseTaxes(pairs []string) ([]event.TaxRate, error) {
	taxes := make([]event.TaxRate, 0, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid tax %q: expected name=rate", pair)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid tax rate %q: %w", raw, err)
		}
		taxes = append(taxes, event.TaxRate{Name: name, Rate: rate})
	}
	return taxes, nil
}

// parseHours parses repeated service=hours pairs.
func parseHours(pairs []string) (map[string]decimal.Decimal, error) {
	hours := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		service, raw, ok := strings.Cut(pair, "=")
		if !ok || service == "" {
			return nil, fmt.Errorf("invalid hours %q: expected service=hours", pair)
		}
		h, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid hours %q: %w", raw, err)
		}
		if _, dup := hours[service]; dup {
			return nil, fmt.Errorf("service %q given twice", service)
		}
		hours[service] = h
	}
	return hours, nil
}

// parseDateFlag parses a date flag, substituting fallback when empty.
func parseDateFlag(raw string, fallback event.Date) (event.Date, error) {
	if raw == "" {
		return fallback, nil
	}
	return event.ParseDate(raw)
}
