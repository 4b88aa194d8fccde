// Package scoring holds the exact score arithmetic: points per note, note
// multipliers and the floor/ceil rounding points the game applies.
//
// All products are computed in decimal so that rounding lands on the same
// integer regardless of binary float representation.
package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
)

// Multipliers and bonuses.
const (
	PPNFactor      = 0.0125
	GroupBonus     = 0.1
	AttributeBonus = 0.1

	RegularNote   = 1.0
	SwingNote     = 0.5
	HoldNote      = 1.25
	SwingHoldNote = 0.625

	GreatAccuracy   = 0.88
	PerfectAccuracy = 1.0
	LockedAccuracy  = 1.08
)

var (
	ppnFactor = decimal.NewFromFloat(PPNFactor)
	one       = decimal.NewFromInt(1)
)

// PPN returns floor(teamTotal * 0.0125 * (1 + group + attribute)) where each
// bonus is 0.1 when matched. A non-positive total yields 0.
func PPN(teamTotal int, groupMatch, attributeMatch bool) int {
	if teamTotal <= 0 {
		return 0
	}
	bonus := one
	if groupMatch {
		bonus = bonus.Add(decimal.NewFromFloat(GroupBonus))
	}
	if attributeMatch {
		bonus = bonus.Add(decimal.NewFromFloat(AttributeBonus))
	}
	return int(decimal.NewFromInt(int64(teamTotal)).Mul(ppnFactor).Mul(bonus).Floor().IntPart())
}

// NoteMultiplier returns the note-type multiplier.
func NoteMultiplier(n model.Note) float64 {
	switch {
	case n.IsHold() && n.IsSwing:
		return SwingHoldNote
	case n.IsHold():
		return HoldNote
	case n.IsSwing:
		return SwingNote
	default:
		return RegularNote
	}
}

// NoteScore returns floor(ppn * product(multipliers)).
func NoteScore(ppn int, multipliers ...float64) int {
	return FloorProduct(float64(ppn), multipliers...)
}

// FloorProduct returns floor(v * product(multipliers)).
func FloorProduct(v float64, multipliers ...float64) int {
	return int(product(v, multipliers).Floor().IntPart())
}

// TruncProduct returns v * m truncated toward zero.
func TruncProduct(v, m float64) int {
	return int(product(v, []float64{m}).Truncate(0).IntPart())
}

// CeilScale returns ceil(stat * factor).
func CeilScale(stat int, factor float64) int {
	return int(product(float64(stat), []float64{factor}).Ceil().IntPart())
}

// Boost returns ceil(stat * (1 + pct)).
func Boost(stat int, pct float64) int {
	return int(decimal.NewFromInt(int64(stat)).Mul(one.Add(decimal.NewFromFloat(pct))).Ceil().IntPart())
}

func product(v float64, multipliers []float64) decimal.Decimal {
	d := decimal.NewFromFloat(v)
	for _, m := range multipliers {
		d = d.Mul(decimal.NewFromFloat(m))
	}
	return d
}
