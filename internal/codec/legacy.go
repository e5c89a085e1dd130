package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/clerkbill/clerk/internal/event"
)

// legacyVersion is the single-blob YAML format. It predates invoicing, so a
// v1 file only ever contains client, service, rate and tax records.
const legacyVersion = 1

// legacyNamespace seeds deterministic record ids during migration, so
// migrating the same v1 file twice yields byte-identical output.
var legacyNamespace = uuid.MustParse("a29ff347-48a9-4d2e-9e19-0c0b70d4b2b1")

// legacyRecord is one entry of the v1 blob. The variant is selected by the
// change field; the remaining fields are populated per variant.
type legacyRecord struct {
	Client string    `yaml:"client"`
	At     time.Time `yaml:"at"`
	Change string    `yaml:"change"`

	Name      string      `yaml:"name"`
	Address   string      `yaml:"address"`
	Service   string      `yaml:"service"`
	Amount    string      `yaml:"amount"`
	Currency  string      `yaml:"currency"`
	Taxes     []legacyTax `yaml:"taxes"`
	Effective string      `yaml:"effective"`
}

type legacyTax struct {
	Name string `yaml:"name"`
	Rate string `yaml:"rate"`
}

// decodeLegacy migrates a v1 blob into current event records, preserving
// order and field values exactly. It fails loudly on anything a v1 release
// could not have written.
func decodeLegacy(data []byte) ([]event.Event, error) {
	var records []legacyRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, corruptf("not a line-format log and not a legacy blob: %v", err)
	}

	var events []event.Event
	for i, rec := range records {
		e, err := migrateRecord(i, rec)
		if err != nil {
			return nil, corruptf("legacy record %d: %v", i+1, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func migrateRecord(index int, rec legacyRecord) (event.Event, error) {
	if rec.Client == "" {
		return event.Event{}, fmt.Errorf("missing client key")
	}
	if rec.At.IsZero() {
		return event.Event{}, fmt.Errorf("missing timestamp")
	}

	var e event.Event
	switch rec.Change {
	case "added":
		e = event.NewClientAdded(rec.At, rec.Client, rec.Name, rec.Address)
	case "renamed":
		e = event.NewClientRenamed(rec.At, rec.Client, rec.Name)
	case "readdressed":
		e = event.NewClientReaddressed(rec.At, rec.Client, rec.Address)
	case "removed":
		e = event.NewClientRemoved(rec.At, rec.Client)
	case "service":
		e = event.NewServiceAdded(rec.At, rec.Client, rec.Service)
	case "rate":
		effective, err := event.ParseDate(rec.Effective)
		if err != nil {
			return event.Event{}, err
		}
		value, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return event.Event{}, fmt.Errorf("rate amount %q: %w", rec.Amount, err)
		}
		amount, err := event.NewMoney(rec.Currency, value)
		if err != nil {
			return event.Event{}, err
		}
		rate := event.Rate{Amount: amount, Per: event.UnitHour}
		e = event.NewRateSet(rec.At, rec.Client, rec.Service, rate, effective)
	case "taxes":
		effective, err := event.ParseDate(rec.Effective)
		if err != nil {
			return event.Event{}, err
		}
		taxes := make([]event.TaxRate, 0, len(rec.Taxes))
		for _, t := range rec.Taxes {
			rate, err := decimal.NewFromString(t.Rate)
			if err != nil {
				return event.Event{}, fmt.Errorf("tax rate %q: %w", t.Rate, err)
			}
			taxes = append(taxes, event.TaxRate{Name: t.Name, Rate: rate})
		}
		e = event.NewTaxesSet(rec.At, rec.Client, taxes, effective)
	default:
		return event.Event{}, fmt.Errorf("unknown change %q", rec.Change)
	}

	e.ID = legacyID(index, rec)
	return e, nil
}

// legacyID derives a stable id for a migrated record from its position and
// identity fields. v1 records carried no ids of their own.
func legacyID(index int, rec legacyRecord) string {
	seed := fmt.Sprintf("%d\x00%s\x00%s\x00%s",
		index, rec.Client, rec.At.UTC().Format(time.RFC3339Nano), rec.Change)
	return uuid.NewSHA1(legacyNamespace, []byte(seed)).String()
}
