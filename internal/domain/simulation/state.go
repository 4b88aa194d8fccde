package simulation

import (
	"github.com/google/uuid"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
)

type hitResult uint8

const (
	great hitResult = iota
	perfect
)

func (h hitResult) String() string {
	if h == perfect {
		return "Perfect"
	}
	return "Great"
}

// skillSource is a skill holder bound to its slot: a performer or the
// accessory equipped in the same slot.
type skillSource struct {
	slot      int
	name      string
	character string
	accessory bool
	level     int
	skill     model.Skill
}

type interval struct {
	start, end float64
}

type sruEffect struct {
	id    uuid.UUID
	slot  int
	value float64
}

type appealEffect struct {
	id      uuid.UUID
	slot    int
	value   float64
	targets []int
}

type syncEffect struct {
	id     uuid.UUID
	target int
}

// activation records the most recent successful activation for Encore.
type activation interface {
	isActivation()
}

// copyable can be re-run by Encore against its original slot.
type copyable struct {
	src *skillSource
}

type amplified struct{}

type encored struct{}

func (copyable) isActivation()  {}
func (amplified) isActivation() {}
func (encored) isActivation()   {}

// trialState is the mutable state of one trial. It is owned by a single
// trial and never shared.
type trialState struct {
	now float64

	totalScore  int
	combo       int
	perfectHits int
	notesHit    int
	holdStarts  int
	spawns      int

	slotPPN [model.SlotCount]int

	lockCount int
	lockOpen  bool
	lockStart float64
	uptime    []interval
	trickEnd  float64

	syncs  [model.SlotCount]*syncEffect
	appeal *appealEffect
	sru    *sruEffect
	psu    map[uuid.UUID]int
	cbu    map[uuid.UUID]float64
	spark  map[uuid.UUID]int

	ampBoost     int
	sparkCharges int
	last         activation

	scoreTrackers map[int]int
	yearTrackers  map[int]map[string]struct{}
	holdResults   map[int]hitResult

	songEnd  float64
	ended    bool
	coinFlip bool

	inScoreCheck bool
	yearDepth    int

	events      [SongEnd + 1]int
	activations map[model.SkillType]int
	failures    map[model.SkillType]int
	rejections  map[model.SkillType]int
}

func newTrialState(songEnd float64, coinFlip bool) *trialState {
	return &trialState{
		songEnd:       songEnd,
		coinFlip:      coinFlip,
		psu:           make(map[uuid.UUID]int),
		cbu:           make(map[uuid.UUID]float64),
		spark:         make(map[uuid.UUID]int),
		scoreTrackers: make(map[int]int),
		yearTrackers:  make(map[int]map[string]struct{}),
		holdResults:   make(map[int]hitResult),
		activations:   make(map[model.SkillType]int),
		failures:      make(map[model.SkillType]int),
		rejections:    make(map[model.SkillType]int),
	}
}

// trickActive reports whether the Total Trick window covers now.
func (s *trialState) trickActive() bool { return s.now < s.trickEnd }

// forcingPerfect reports whether any lock-type effect is running.
func (s *trialState) forcingPerfect() bool { return s.lockCount > 0 || s.trickActive() }
