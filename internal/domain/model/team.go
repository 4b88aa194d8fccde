package model

// SlotCount is the number of positions on a team and on the note lanes.
const SlotCount = 9

// PassiveEffect tags what a passive skill (SIS) modifies.
type PassiveEffect string

// Passive effects the engine reads.
const (
	CharmEffect PassiveEffect = "charm"
	HealEffect  PassiveEffect = "heal"
	TrickEffect PassiveEffect = "trick"
)

// Passive is a slot-attached modifier that never triggers on its own.
type Passive struct {
	Name      string        `yaml:"name"`
	Effect    PassiveEffect `yaml:"effect"`
	Attribute Attribute     `yaml:"attribute"`
	Value     float64       `yaml:"value"`
}

// Performer is the card occupying a slot.
type Performer struct {
	Name       string    `yaml:"name"`
	Character  string    `yaml:"character"`
	Attribute  Attribute `yaml:"attribute"`
	SkillLevel int       `yaml:"skill_level"`
	Skill      Skill     `yaml:"skill"`
}

// Accessory is equipment with its own skill and stat contribution.
type Accessory struct {
	Name       string `yaml:"name"`
	SkillLevel int    `yaml:"skill_level"`
	Skill      Skill  `yaml:"skill"`
	Stats      Stats  `yaml:"stats"`
}

// Slot is one team position. Stats are the card's own stats with passives
// applied; an equipped accessory's Stats are added on top.
type Slot struct {
	Performer *Performer `yaml:"performer"`
	Accessory *Accessory `yaml:"accessory"`
	Passives  []Passive  `yaml:"passives"`
	Stats     Stats      `yaml:"stats"`
}

// BaseStats returns the slot's stats with the accessory's contribution.
func (s *Slot) BaseStats() Stats {
	if s.Accessory == nil {
		return s.Stats
	}
	return s.Stats.Add(s.Accessory.Stats)
}

// Occupied reports whether a performer is placed in the slot.
func (s *Slot) Occupied() bool { return s != nil && s.Performer != nil }

// Character returns the performer's character, or "" for an empty slot.
func (s *Slot) Character() string {
	if !s.Occupied() {
		return ""
	}
	return s.Performer.Character
}

// PassiveSum adds the values of every passive carrying effect.
func (s *Slot) PassiveSum(effect PassiveEffect) float64 {
	var sum float64
	for _, p := range s.Passives {
		if p.Effect == effect {
			sum += p.Value
		}
	}
	return sum
}

// HasPassive reports whether any passive carries effect.
func (s *Slot) HasPassive(effect PassiveEffect) bool {
	for _, p := range s.Passives {
		if p.Effect == effect {
			return true
		}
	}
	return false
}

// Team is nine ordered slots.
type Team struct {
	Slots [SlotCount]Slot `yaml:"slots"`
}
