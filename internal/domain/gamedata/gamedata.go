// Package gamedata provides the static tables the simulation reads: combo
// multiplier tiers, note visibility per approach rate, character group
// membership and the two tunable score constants.
package gamedata

import (
	"slices"
	"sort"
)

// Defaults for the tunable constants.
const (
	DefaultHealMultiplier     = 480
	DefaultMaxComboFeverBonus = 1000
)

// Tier maps a combo threshold to a multiplier.
type Tier struct {
	Threshold  int     `koanf:"threshold"`
	Multiplier float64 `koanf:"multiplier"`
}

// GameData is immutable once built and may be shared across trials.
type GameData struct {
	comboTiers      []Tier
	feverTiers      []Tier
	noteVisibility  map[int]float64
	groupMapping    map[string][]string
	subGroupMapping map[string][]string

	healMultiplier     int
	maxComboFeverBonus int
}

// Option customizes a GameData built by New.
type Option func(*GameData)

// WithComboTiers replaces the combo multiplier table.
func WithComboTiers(tiers []Tier) Option {
	return func(g *GameData) {
		if len(tiers) > 0 {
			g.comboTiers = sortTiers(tiers)
		}
	}
}

// WithFeverTiers replaces the combo-fever multiplier table.
func WithFeverTiers(tiers []Tier) Option {
	return func(g *GameData) {
		g.feverTiers = sortTiers(tiers)
	}
}

// WithNoteVisibility replaces the approach-rate visibility table.
func WithNoteVisibility(seconds map[int]float64) Option {
	return func(g *GameData) {
		if len(seconds) > 0 {
			g.noteVisibility = make(map[int]float64, len(seconds))
			for k, v := range seconds {
				g.noteVisibility[k] = v
			}
		}
	}
}

// WithGroupMapping sets the song group membership used for the group bonus
// and for Appeal Boost targets.
func WithGroupMapping(m map[string][]string) Option {
	return func(g *GameData) { mergeMapping(g.groupMapping, m) }
}

// WithSubGroupMapping sets the sub-group membership used by Sync and Year
// Group skills.
func WithSubGroupMapping(m map[string][]string) Option {
	return func(g *GameData) { mergeMapping(g.subGroupMapping, m) }
}

// WithHealMultiplier sets the heal-to-score conversion factor.
func WithHealMultiplier(v int) Option {
	return func(g *GameData) {
		if v > 0 {
			g.healMultiplier = v
		}
	}
}

// WithMaxComboFeverBonus caps the per-note combo-fever bonus.
func WithMaxComboFeverBonus(v int) Option {
	return func(g *GameData) {
		if v > 0 {
			g.maxComboFeverBonus = v
		}
	}
}

// New builds GameData from the live-game defaults plus opts.
func New(opts ...Option) *GameData {
	g := &GameData{
		comboTiers: sortTiers([]Tier{
			{1, 1.0}, {51, 1.1}, {101, 1.15}, {201, 1.2},
			{401, 1.25}, {601, 1.3}, {801, 1.35},
		}),
		noteVisibility: map[int]float64{
			1: 1.75, 2: 1.6, 3: 1.45, 4: 1.3, 5: 1.15,
			6: 1.0, 7: 0.9, 8: 0.8, 9: 0.7, 10: 0.6,
		},
		groupMapping:       make(map[string][]string),
		subGroupMapping:    make(map[string][]string),
		healMultiplier:     DefaultHealMultiplier,
		maxComboFeverBonus: DefaultMaxComboFeverBonus,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ComboMultiplier returns the multiplier for the note that will bring the
// combo to combo+1.
func (g *GameData) ComboMultiplier(combo int) float64 {
	return tierFor(g.comboTiers, combo+1)
}

// FeverMultiplier is ComboMultiplier over the combo-fever table.
func (g *GameData) FeverMultiplier(combo int) float64 {
	return tierFor(g.feverTiers, combo+1)
}

// Visibility returns how long a note is on screen before its start time.
// Unknown approach rates use the nearest configured one.
func (g *GameData) Visibility(approachRate int) float64 {
	if v, ok := g.noteVisibility[approachRate]; ok {
		return v
	}
	if len(g.noteVisibility) == 0 {
		return 1.0
	}
	keys := make([]int, 0, len(g.noteVisibility))
	for k := range g.noteVisibility {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if abs(k-approachRate) < abs(best-approachRate) {
			best = k
		}
	}
	return g.noteVisibility[best]
}

// InGroup reports whether character belongs to the song group.
func (g *GameData) InGroup(group, character string) bool {
	return slices.Contains(g.groupMapping[group], character)
}

// GroupMembers returns the characters of a song group.
func (g *GameData) GroupMembers(group string) []string { return g.groupMapping[group] }

// SubGroupMembers returns the characters of a skill target sub-group.
func (g *GameData) SubGroupMembers(target string) []string { return g.subGroupMapping[target] }

// HealMultiplier converts a healer's value to score.
func (g *GameData) HealMultiplier() int { return g.healMultiplier }

// MaxComboFeverBonus caps the summed combo-fever bonus of one note.
func (g *GameData) MaxComboFeverBonus() int { return g.maxComboFeverBonus }

// ComboTiers returns a copy of the combo table, highest threshold first.
func (g *GameData) ComboTiers() []Tier { return slices.Clone(g.comboTiers) }

// tierFor walks tiers sorted by threshold descending.
func tierFor(tiers []Tier, count int) float64 {
	for _, t := range tiers {
		if count >= t.Threshold {
			return t.Multiplier
		}
	}
	return 1.0
}

func sortTiers(tiers []Tier) []Tier {
	out := slices.Clone(tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Threshold > out[j].Threshold })
	return out
}

func mergeMapping(dst, src map[string][]string) {
	for k, v := range src {
		dst[k] = slices.Clone(v)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
