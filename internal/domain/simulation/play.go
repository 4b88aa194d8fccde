// Package simulation scores a team on a song by running independent,
// event-driven trials of a full playthrough.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/gamedata"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/scoring"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
)

// songEndPadding separates the song-end event from the last note.
const songEndPadding = 0.001

// Rand is the source of every roll in a trial.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Play binds a team, a song and a config. Everything derived from them is
// computed once here and shared read-only by all trials.
type Play struct {
	team *model.Team
	song *model.Song
	cfg  PlayConfig
	data *gamedata.GameData

	log           logger.Logger
	detailed      bool
	recordMetrics bool

	seed int64
	mu   sync.Mutex
	rng  *rand.Rand

	baseStats   [model.SlotCount]model.Stats
	groupMatch  [model.SlotCount]bool
	attrMatch   [model.SlotCount]bool
	performers  [model.SlotCount]*skillSource
	accessories [model.SlotCount]*skillSource
	thresholds  [model.SlotCount]int
	tricks      [model.SlotCount][]model.Passive

	counterSlots map[model.Trigger][]int
	starSlots    []int
	scoreSlots   []int
	yearSlots    []int

	timeline []Event
	songEnd  float64
	basePPN  [model.SlotCount]int
}

// NewPlay validates its inputs and precomputes everything trials share. A
// nil data uses the built-in game data.
func NewPlay(team *model.Team, song *model.Song, cfg PlayConfig, data *gamedata.GameData, opts ...Option) (*Play, error) {
	if team == nil {
		return nil, ErrNilTeam
	}
	if song == nil {
		return nil, ErrNilSong
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if data == nil {
		data = gamedata.New()
	}

	p := &Play{
		team:          team,
		song:          song,
		cfg:           cfg,
		data:          data,
		log:           logger.Nop(),
		recordMetrics: true,
		counterSlots:  make(map[model.Trigger][]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.detailed = cfg.EnableDetailedLog

	p.seed = time.Now().UnixNano()
	if cfg.Seed != nil {
		p.seed = *cfg.Seed
	}
	p.rng = rand.New(rand.NewSource(p.seed)) //nolint:gosec // simulation rolls, not security

	p.indexTeam()
	p.buildTimeline()
	p.basePPN = p.ppnFor(p.teamTotal(p.baseStats))

	return p, nil
}

func (p *Play) indexTeam() {
	for i := range p.team.Slots {
		slot := &p.team.Slots[i]
		p.baseStats[i] = slot.BaseStats()
		if !slot.Occupied() {
			continue
		}
		perf := slot.Performer
		p.groupMatch[i] = p.data.InGroup(p.song.Group, perf.Character)
		p.attrMatch[i] = perf.Attribute == p.song.Attribute
		for _, ps := range slot.Passives {
			if ps.Effect == model.TrickEffect {
				p.tricks[i] = append(p.tricks[i], ps)
			}
		}

		if perf.Skill.Type == "" {
			continue
		}
		src := &skillSource{
			slot:      i,
			name:      perf.Name,
			character: perf.Character,
			level:     perf.SkillLevel,
			skill:     perf.Skill,
		}
		p.performers[i] = src
		p.thresholds[i] = perf.Skill.Threshold(perf.SkillLevel)

		switch perf.Skill.Activation {
		case model.RhythmIcons, model.Combo, model.Perfects:
			p.counterSlots[perf.Skill.Activation] = append(p.counterSlots[perf.Skill.Activation], i)
		case model.StarNotes:
			p.starSlots = append(p.starSlots, i)
		case model.Score:
			if p.thresholds[i] > 0 {
				p.scoreSlots = append(p.scoreSlots, i)
			}
		case model.YearGroup:
			if perf.Skill.Target != "" {
				p.yearSlots = append(p.yearSlots, i)
			}
		case model.Time:
			// scheduled up front in buildTimeline
		}

		if acc := slot.Accessory; acc != nil && acc.Skill.Type != "" {
			p.accessories[i] = &skillSource{
				slot:      i,
				name:      acc.Name,
				character: perf.Character,
				accessory: true,
				level:     acc.SkillLevel,
				skill:     acc.Skill,
			}
		}
	}
}

// buildTimeline lays out every event known before a trial starts.
func (p *Play) buildTimeline() {
	vis := p.data.Visibility(p.cfg.ApproachRate)
	events := make([]Event, 0, len(p.song.Notes)*4+1)

	for i, n := range p.song.Notes {
		events = append(events, Event{Time: n.StartTime - vis, Kind: NoteSpawn, Payload: NotePayload{Note: i, Phase: SpawnHead}})
		if n.IsHold() {
			events = append(events,
				Event{Time: n.EndTime - vis, Kind: NoteSpawn, Payload: NotePayload{Note: i, Phase: SpawnTail}},
				Event{Time: n.StartTime, Kind: NoteStart, Payload: NotePayload{Note: i}},
			)
		}
		events = append(events, Event{Time: n.EndTime, Kind: NoteCompletion, Payload: NotePayload{Note: i}})
	}

	p.songEnd = p.song.LastNoteEnd() + songEndPadding
	events = append(events, Event{Time: p.songEnd, Kind: SongEnd, Payload: EndPayload{}})

	for i, src := range p.performers {
		if src == nil || src.skill.Activation != model.Time {
			continue
		}
		step := p.thresholds[i]
		if step <= 0 {
			continue
		}
		for k := 1; float64(k*step) < p.song.Length; k++ {
			events = append(events, Event{Time: float64(k * step), Kind: TimeSkill, Payload: SlotPayload{Slot: i}})
		}
	}

	for i := range events {
		events[i].seq = uint64(i + 1)
	}
	sort.Slice(events, func(i, j int) bool { return eventLess(&events[i], &events[j]) })
	p.timeline = events
}

func (p *Play) teamTotal(stats [model.SlotCount]model.Stats) int {
	total := 0
	for _, s := range stats {
		total += s.Get(p.song.Attribute)
	}
	return total
}

// ppnFor derives every occupied slot's points per note from a team total.
func (p *Play) ppnFor(total int) [model.SlotCount]int {
	var out [model.SlotCount]int
	if total <= 0 {
		return out
	}
	for i := range p.team.Slots {
		if p.team.Slots[i].Occupied() {
			out[i] = scoring.PPN(total, p.groupMatch[i], p.attrMatch[i])
		}
	}
	return out
}

// yearMembers returns the teammates a Year Group receiver waits on.
func (p *Play) yearMembers(slot int) map[string]struct{} {
	src := p.performers[slot]
	out := make(map[string]struct{})
	for _, c := range p.data.SubGroupMembers(src.skill.Target) {
		if c != src.character {
			out[c] = struct{}{}
		}
	}
	return out
}

// Seed returns the seed of the shared generator.
func (p *Play) Seed() int64 { return p.seed }

// SongEnd returns the time of the song-end event.
func (p *Play) SongEnd() float64 { return p.songEnd }

// BasePPN returns each slot's points per note before any effect.
func (p *Play) BasePPN() [model.SlotCount]int { return p.basePPN }

// Song returns the song being played.
func (p *Play) Song() *model.Song { return p.song }

// Simulate runs n trials on the shared generator and returns their scores in
// trial order.
func (p *Play) Simulate(ctx context.Context, n int) ([]int, error) {
	results, err := p.SimulateDetailed(ctx, n)
	if err != nil {
		return nil, err
	}
	scores := make([]int, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return scores, nil
}

// SimulateDetailed is Simulate with per-trial diagnostics. Trials draw from
// the play's generator one after another, so a fixed seed reproduces the
// whole sequence.
func (p *Play) SimulateDetailed(ctx context.Context, n int) ([]TrialResult, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrials, n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]TrialResult, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled after %d trials: %w", i, err)
		}
		results = append(results, p.RunTrial(ctx, i, p.rng))
	}

	if n > 1 {
		p.log.Debug(ctx, "simulation finished", Summarize(results, p.song.Length).Fields()...)
	}
	return results, nil
}

// RunTrial runs a single trial drawing every roll from rng. It is safe to
// call concurrently with distinct generators.
func (p *Play) RunTrial(ctx context.Context, index int, rng Rand) TrialResult {
	start := time.Now()
	t := p.newTrial(ctx, index, rng)
	t.run()
	res := t.result()
	if p.recordMetrics {
		t.flushMetrics(res, time.Since(start))
	}
	p.log.Debug(ctx, "trial finished",
		logger.Int("trial", index+1),
		logger.String("score", formatScore(res.Score)),
		logger.Float64("perfect_ratio", res.PerfectRatio()),
		logger.Float64("lock_uptime", res.LockUptime),
	)
	return res
}
