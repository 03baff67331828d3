package domain

import "errors"

const kgToLb = 2.2046226218

// Weight display units. Readings are always stored in kilograms.
const (
	UnitKg = "kg"
	UnitLb = "lb"
)

// ErrBadUnit is returned when a display unit is neither kg nor lb.
var ErrBadUnit = errors.New("unit must be \"kg\" or \"lb\"")

// ValidUnit reports whether u is a supported display unit.
func ValidUnit(u string) bool {
	return u == UnitKg || u == UnitLb
}

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	switch {
	case from == to:
		return v
	case from == UnitKg && to == UnitLb:
		return v * kgToLb
	case from == UnitLb && to == UnitKg:
		return v / kgToLb
	}
	return v
}
