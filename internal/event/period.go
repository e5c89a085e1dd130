package event

import "fmt"

// Period is a billing period. From must be strictly before Until.
type Period struct {
	From  Date `json:"from"`
	Until Date `json:"until"`
}

// NewPeriod constructs a Period without validating it.
func NewPeriod(from, until Date) Period {
	return Period{From: from, Until: until}
}

// Valid reports whether the period is non-empty.
func (p Period) Valid() bool {
	return p.From.Before(p.Until)
}

// Contains reports whether d falls within the period, inclusive of both ends.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.From) && !d.After(p.Until)
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s", p.From, p.Until)
}
