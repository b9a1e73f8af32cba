// Package datefmt converts between the "YYYY-MM-DD HH:MM:SS" display form used at
// the API boundary and the epoch-millisecond instants kept in storage.
package datefmt

import (
	"fmt"
	"time"

	"github.com/coreybb/dietlog/models"
)

// Layout is the display shape of every timestamp the service exposes.
const Layout = "2006-01-02 15:04:05"

// Normalizer converts timestamps in a fixed location.
type Normalizer struct {
	loc *time.Location
}

// New returns a Normalizer bound to loc. A nil loc means the host's local zone.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// ToInstant parses a display string and returns epoch milliseconds.
func (n *Normalizer) ToInstant(display string) (int64, error) {
	t, err := time.ParseInLocation(Layout, display, n.loc)
	// ParseInLocation tolerates single-digit fields and trailing fractional
	// seconds; only the exact zero-padded shape is accepted.
	if err != nil || len(display) != len(Layout) || t.Format(Layout) != display {
		return 0, fmt.Errorf("date %q must be formatted as YYYY-MM-DD HH:MM:SS: %w", display, models.ErrValidation)
	}
	return t.UnixMilli(), nil
}

// ToDisplay renders epoch milliseconds as a display string.
func (n *Normalizer) ToDisplay(instant int64) string {
	return time.UnixMilli(instant).In(n.loc).Format(Layout)
}

// Format renders t as a display string in the normalizer's location.
func (n *Normalizer) Format(t time.Time) string {
	return t.In(n.loc).Format(Layout)
}

// Valid reports whether display is well formed.
func (n *Normalizer) Valid(display string) bool {
	_, err := n.ToInstant(display)
	return err == nil
}
