package gamedata

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Visibility is one approach-rate row of the visibility table.
type Visibility struct {
	ApproachRate int     `koanf:"approach_rate"`
	Seconds      float64 `koanf:"seconds"`
}

// document is the on-disk layout. Absent sections keep the defaults.
type document struct {
	ComboTiers         []Tier              `koanf:"combo_tiers"`
	ComboFeverTiers    []Tier              `koanf:"combo_fever_tiers"`
	NoteVisibility     []Visibility        `koanf:"note_visibility"`
	GroupMapping       map[string][]string `koanf:"group_mapping"`
	SubGroupMapping    map[string][]string `koanf:"sub_group_mapping"`
	HealMultiplier     int                 `koanf:"heal_multiplier"`
	MaxComboFeverBonus int                 `koanf:"max_combo_fever_bonus"`
}

// Load reads a YAML game data file and layers it over the defaults. An
// empty path returns the defaults. Extra opts are applied last.
func Load(_ context.Context, path string, opts ...Option) (*GameData, error) {
	if path == "" {
		return New(opts...), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	return New(append(doc.options(), opts...)...), nil
}

func (d *document) options() []Option {
	opts := []Option{
		WithComboTiers(d.ComboTiers),
		WithGroupMapping(d.GroupMapping),
		WithSubGroupMapping(d.SubGroupMapping),
		WithHealMultiplier(d.HealMultiplier),
		WithMaxComboFeverBonus(d.MaxComboFeverBonus),
	}
	if len(d.ComboFeverTiers) > 0 {
		opts = append(opts, WithFeverTiers(d.ComboFeverTiers))
	}
	if len(d.NoteVisibility) > 0 {
		vis := make(map[int]float64, len(d.NoteVisibility))
		for _, v := range d.NoteVisibility {
			vis[v.ApproachRate] = v.Seconds
		}
		opts = append(opts, WithNoteVisibility(vis))
	}
	return opts
}
