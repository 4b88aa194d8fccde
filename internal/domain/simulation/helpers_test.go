package simulation

import (
	"context"
	"testing"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/gamedata"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
)

// scriptedRand replays fixed rolls and then repeats fallback.
type scriptedRand struct {
	floats   []float64
	ints     []int
	fallback float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return r.fallback
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func rolls(fallback float64, floats ...float64) *scriptedRand {
	return &scriptedRand{floats: floats, fallback: fallback}
}

func performer(name, character string, skill model.Skill) *model.Performer {
	return &model.Performer{
		Name:       name,
		Character:  character,
		Attribute:  model.Pure,
		SkillLevel: 1,
		Skill:      skill,
	}
}

func smileSlot(smile int, p *model.Performer) model.Slot {
	return model.Slot{Performer: p, Stats: model.Stats{Smile: smile}}
}

func note(at float64, position int) model.Note {
	return model.Note{StartTime: at, EndTime: at, Position: position}
}

func smileSong(length float64, notes ...model.Note) *model.Song {
	return &model.Song{
		Title:     "test",
		Group:     "none",
		Attribute: model.Smile,
		Length:    length,
		Notes:     notes,
	}
}

func newTestPlay(t *testing.T, team *model.Team, song *model.Song, accuracy float64, data *gamedata.GameData) *Play {
	t.Helper()
	cfg, err := NewPlayConfig(accuracy, 9, WithSeed(42))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	p, err := NewPlay(team, song, cfg, data, WithMetrics(false))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	return p
}

// newTestTrial builds a trial with the coin flip forced to coinFlip.
func newTestTrial(p *Play, coinFlip bool, rng *scriptedRand) *trial {
	t := p.newTrial(context.Background(), 0, rng)
	t.state.coinFlip = coinFlip
	return t
}

func countQueued(t *trial, kind EventKind) int {
	n := 0
	for _, e := range t.queue.items {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// showcaseTeam exercises most skill types at once.
func showcaseTeam() *model.Team {
	team := &model.Team{}
	skills := []model.Skill{
		{Type: model.Scorer, Activation: model.Combo, Thresholds: []int{10}, Chances: []float64{0.4}, Values: []float64{300}},
		{Type: model.PerfectLock, Activation: model.Perfects, Thresholds: []int{15}, Chances: []float64{0.3}, Durations: []float64{4}},
		{Type: model.PerfectScoreUp, Activation: model.RhythmIcons, Thresholds: []int{20}, Chances: []float64{0.35}, Values: []float64{100}, Durations: []float64{5}},
		{Type: model.Amplify, Activation: model.Time, Thresholds: []int{12}, Chances: []float64{0.5}, Values: []float64{2}},
		{Type: model.Encore, Activation: model.Combo, Thresholds: []int{25}, Chances: []float64{0.4}},
		{Type: model.SkillRateUp, Activation: model.Time, Thresholds: []int{15}, Chances: []float64{0.3}, Values: []float64{0.1}, Durations: []float64{6}},
		{Type: model.AppealBoost, Activation: model.Combo, Target: model.SelfTarget, Thresholds: []int{30}, Chances: []float64{0.4}, Values: []float64{0.2}, Durations: []float64{6}},
		{Type: model.ComboBonusUp, Activation: model.Score, Thresholds: []int{5000}, Chances: []float64{0.4}, Values: []float64{200}, Durations: []float64{5}},
		{Type: model.Spark, Activation: model.StarNotes, Thresholds: []int{2}, Chances: []float64{0.6}, Values: []float64{50}, Durations: []float64{6}},
	}
	for i, sk := range skills {
		team.Slots[i] = model.Slot{
			Performer: &model.Performer{
				Name:       string(sk.Type),
				Character:  "member",
				Attribute:  model.Smile,
				SkillLevel: 1,
				Skill:      sk,
			},
			Stats: model.Stats{Smile: 5000, Pure: 3000, Cool: 3000},
		}
	}
	team.Slots[1].Passives = []model.Passive{{Name: "trick", Effect: model.TrickEffect, Attribute: model.Smile, Value: 0.3}}
	team.Slots[0].Passives = []model.Passive{{Name: "charm", Effect: model.CharmEffect, Value: 1.5}}
	team.Slots[4].Accessory = &model.Accessory{
		Name:       "bracelet",
		SkillLevel: 1,
		Skill:      model.Skill{Type: model.Scorer, Chances: []float64{0.5}, Values: []float64{150}},
	}
	return team
}

func showcaseSong() *model.Song {
	notes := make([]model.Note, 0, 200)
	for i := 0; i < 200; i++ {
		at := 2.0 + float64(i)*0.5
		n := model.Note{StartTime: at, EndTime: at, Position: i%9 + 1, IsStar: i%17 == 0, IsSwing: i%5 == 0}
		if i%11 == 0 {
			n.EndTime = at + 0.4
		}
		notes = append(notes, n)
	}
	return smileSong(110, notes...)
}
