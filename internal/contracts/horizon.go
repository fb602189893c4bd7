package contracts

import "fmt"

// Horizon is the forward-looking trading-day window over which a label
// and score are defined.
type Horizon string

const (
	HorizonShort  Horizon = "5d"
	HorizonMedium Horizon = "20d"
	HorizonLong   Horizon = "60d"
)

// Horizons lists all supported horizons in serving order
func Horizons() []Horizon {
	return []Horizon{HorizonShort, HorizonMedium, HorizonLong}
}

// Days returns the horizon window in trading days
func (h Horizon) Days() int {
	switch h {
	case HorizonShort:
		return 5
	case HorizonMedium:
		return 20
	case HorizonLong:
		return 60
	}
	return 0
}

// Valid reports whether h is a supported horizon
func (h Horizon) Valid() bool {
	return h.Days() > 0
}

// ParseHorizon converts a tag like "5d" into a Horizon
func ParseHorizon(tag string) (Horizon, error) {
	h := Horizon(tag)
	if !h.Valid() {
		return "", fmt.Errorf("unknown horizon %q (want 5d, 20d or 60d)", tag)
	}
	return h, nil
}
