package model

// SkillType names what a skill does when it activates.
type SkillType string

// Skill types.
const (
	Scorer         SkillType = "Scorer"
	Healer         SkillType = "Healer"
	PerfectLock    SkillType = "Perfect Lock"
	TotalTrick     SkillType = "Total Trick"
	Amplify        SkillType = "Amplify"
	Encore         SkillType = "Encore"
	SkillRateUp    SkillType = "Skill Rate Up"
	AppealBoost    SkillType = "Appeal Boost"
	Sync           SkillType = "Sync"
	PerfectScoreUp SkillType = "Perfect Score Up"
	ComboBonusUp   SkillType = "Combo Bonus Up"
	Spark          SkillType = "Spark"
)

// Trigger is the event class a skill is sensitive to.
type Trigger string

// Trigger categories.
const (
	RhythmIcons Trigger = "Rhythm Icons"
	Combo       Trigger = "Combo"
	Perfects    Trigger = "Perfects"
	Time        Trigger = "Time"
	Score       Trigger = "Score"
	StarNotes   Trigger = "Star Notes"
	YearGroup   Trigger = "Year Group"
)

// SelfTarget makes an Appeal Boost apply to the activating slot only. An
// empty target means the same.
const SelfTarget = "self"

// Skill is the per-level definition of a triggered skill. Each list is
// indexed by skill level starting at 1.
type Skill struct {
	Type       SkillType `yaml:"type"`
	Activation Trigger   `yaml:"activation"`
	Target     string    `yaml:"target"`
	Thresholds []int     `yaml:"thresholds"`
	Chances    []float64 `yaml:"chances"`
	Values     []float64 `yaml:"values"`
	Durations  []float64 `yaml:"durations"`
}

// Threshold returns the trigger threshold at level.
func (s Skill) Threshold(level int) int { return atLevel(s.Thresholds, level) }

// Chance returns the activation chance in [0,1] at level.
func (s Skill) Chance(level int) float64 { return atLevel(s.Chances, level) }

// Value returns the effect magnitude at level.
func (s Skill) Value(level int) float64 { return atLevel(s.Values, level) }

// Duration returns the effect duration in seconds at level.
func (s Skill) Duration(level int) float64 { return atLevel(s.Durations, level) }

// atLevel clamps level into [1, len(list)]. An empty list reads as zero.
func atLevel[T int | float64](list []T, level int) T {
	var zero T
	if len(list) == 0 {
		return zero
	}
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(list) {
		i = len(list) - 1
	}
	return list[i]
}
