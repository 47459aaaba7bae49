// Package tier defines the three ordered entity classes of the geographic
// hierarchy: countries, regions and areas.
//
// Tiers are totally ordered (countries < regions < areas). The ordering
// defines the only legal adjacency for connections: a country may be linked
// to a region and a region to an area, never a country directly to an area.
package tier

import (
	"fmt"

	"github.com/matzehuels/geoset/pkg/errors"
)

// Tier is one of the ordered entity classes.
type Tier int

const (
	Countries Tier = iota
	Regions
	Areas
)

// Count is the number of tiers.
const Count = 3

// All lists every tier in order.
var All = [Count]Tier{Countries, Regions, Areas}

var names = [Count]string{"countries", "regions", "areas"}

// String returns the tier's wire name ("countries", "regions", "areas").
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return names[t]
}

// Valid reports whether t is one of the three defined tiers.
func (t Tier) Valid() bool { return t >= Countries && t <= Areas }

// Index returns the zero-based position of t in the ordering.
func (t Tier) Index() int { return int(t) }

// Next returns the tier immediately above t and true, or false for Areas.
func (t Tier) Next() (Tier, bool) {
	if !t.Valid() || t == Areas {
		return 0, false
	}
	return t + 1, true
}

// Prev returns the tier immediately below t and true, or false for Countries.
func (t Tier) Prev() (Tier, bool) {
	if !t.Valid() || t == Countries {
		return 0, false
	}
	return t - 1, true
}

// Parse resolves a wire name to a Tier. Matching is exact.
func Parse(s string) (Tier, error) {
	for i, n := range names {
		if n == s {
			return Tier(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidTier, "unknown tier %q (want countries, regions or areas)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidTier, "invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CheckAdjacent reports whether a connection between tiers a and b is legal.
// It returns a SAME_TIER error when a == b and a NON_ADJACENT_TIER error when
// the tiers are more than one step apart.
func CheckAdjacent(a, b Tier) error {
	if !a.Valid() || !b.Valid() {
		return errors.New(errors.ErrCodeInvalidTier, "invalid tier pair %s, %s", a, b)
	}
	if a == b {
		return errors.New(errors.ErrCodeSameTier, "Can't make connections between %s and %s", a, b)
	}
	if d := a - b; d > 1 || d < -1 {
		lo, hi := Order(a, b)
		return errors.New(errors.ErrCodeNonAdjacentTier, "Can't make connections between %s and %s", lo, hi)
	}
	return nil
}

// Order returns a and b sorted so that lo < hi in the tier ordering.
func Order(a, b Tier) (lo, hi Tier) {
	if a <= b {
		return a, b
	}
	return b, a
}
