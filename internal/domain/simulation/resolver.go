package simulation

import (
	"sort"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
)

// Bounds on cascades that could otherwise feed themselves.
const (
	maxScorePasses    = 1024
	maxYearGroupDepth = 64
)

// resolve runs the skills of slots whose trigger just fired. Slots split
// into Amplify, Encore and everything else; each bucket runs from the last
// slot to the first. Ordinary skills go before Amplify unless the trial's
// coin flip put Amplify first. Encore always goes last.
func (t *trial) resolve(trigger model.Trigger, slots []int) {
	if len(slots) == 0 {
		return
	}

	var amps, encores, others []int
	for _, slot := range slots {
		src := t.play.performers[slot]
		if src == nil {
			continue
		}
		switch src.skill.Type {
		case model.Amplify:
			amps = append(amps, slot)
		case model.Encore:
			encores = append(encores, slot)
		default:
			others = append(others, slot)
		}
	}
	for _, b := range [][]int{amps, encores, others} {
		sort.Sort(sort.Reverse(sort.IntSlice(b)))
	}

	order := [][]int{others, amps, encores}
	if t.state.coinFlip {
		order = [][]int{amps, others, encores}
	}

	ampConsumed := false
	for _, bucket := range order {
		for _, slot := range bucket {
			t.attempt(trigger, slot, &ampConsumed)
		}
	}
}

// attempt rolls the performer's skill and, only if that fails, the
// accessory in the same slot.
func (t *trial) attempt(trigger model.Trigger, slot int, ampConsumed *bool) {
	if t.roll(trigger, t.play.performers[slot], ampConsumed) {
		return
	}
	acc := t.play.accessories[slot]
	if acc == nil {
		return
	}
	t.roll(trigger, acc, ampConsumed)
}

// roll draws once against the skill's chance at its effective level and
// activates it on success.
func (t *trial) roll(trigger model.Trigger, src *skillSource, ampConsumed *bool) bool {
	s := t.state
	amp := 0
	if src.skill.Type != model.Amplify && !*ampConsumed {
		amp = s.ampBoost
	}
	level := src.level + amp

	chance := src.skill.Chance(level)
	if s.sru != nil && s.sru.slot != src.slot {
		chance += s.sru.value
	}

	if r := t.rng.Float64(); r > chance {
		s.failures[src.skill.Type]++
		if t.trace {
			t.log.Info(t.ctx, "skill failed",
				logger.Float64("t", s.now),
				logger.Int("slot", src.slot+1),
				logger.String("holder", src.name),
				logger.Bool("accessory", src.accessory),
				logger.Float64("chance", chance),
			)
		}
		return false
	}

	if amp > 0 {
		s.ampBoost = 0
		*ampConsumed = true
	}
	t.activate(trigger, src, level)
	return true
}

// activate applies a successful skill and updates the Encore record. A
// performer's activation also feeds Year Group trackers.
func (t *trial) activate(trigger model.Trigger, src *skillSource, level int) {
	s := t.state
	s.activations[src.skill.Type]++
	if t.trace {
		t.log.Info(t.ctx, "skill activated",
			logger.Float64("t", s.now),
			logger.Int("slot", src.slot+1),
			logger.String("holder", src.name),
			logger.String("skill", string(src.skill.Type)),
			logger.String("trigger", string(trigger)),
			logger.Int("level", level),
		)
	}

	switch src.skill.Type {
	case model.Amplify:
		s.ampBoost += int(src.skill.Value(level))
		s.last = amplified{}
	case model.Encore:
		s.sparkCharges++
		if c, ok := s.last.(copyable); ok {
			t.apply(c.src, level)
		} else if t.trace {
			t.log.Info(t.ctx, "encore had nothing to copy", logger.Float64("t", s.now))
		}
		s.last = encored{}
	default:
		t.apply(src, level)
	}

	if !src.accessory {
		t.yearGroup(src.character)
	}
}

// apply runs src's effect at level against src's own slot. Encore reuses it
// with the copied holder and its own level.
func (t *trial) apply(src *skillSource, level int) {
	s := t.state
	skill := &src.skill
	slot := src.slot

	switch skill.Type {
	case model.Scorer, model.Healer:
		gain := t.applyScore(skill, slot, level)
		s.last = copyable{src: src}
		if t.trace {
			t.log.Info(t.ctx, "score gained", logger.Int("slot", slot+1), logger.Int("points", gain))
		}
		if gain > 0 {
			t.checkScoreTriggers()
		}
	case model.PerfectLock:
		t.startLock(skill.Duration(level))
		s.last = copyable{src: src}
	case model.TotalTrick:
		t.startTrick(skill.Duration(level))
		s.last = copyable{src: src}
	case model.SkillRateUp:
		t.startSkillRateUp(src, skill, slot, level)
		s.last = copyable{src: src}
	case model.AppealBoost:
		t.startAppealBoost(src, skill, slot, level)
		s.last = copyable{src: src}
	case model.Sync:
		target, ok := t.startSync(skill, slot, level)
		if ok && t.trace {
			t.log.Info(t.ctx, "sync copied teammate", logger.Int("slot", slot+1), logger.Int("target", target+1))
		}
		s.last = copyable{src: src}
	case model.PerfectScoreUp:
		t.startPerfectScoreUp(skill, level)
		s.last = copyable{src: src}
	case model.ComboBonusUp:
		t.startComboBonusUp(skill, level)
		s.last = copyable{src: src}
	case model.Spark:
		consumed, bonus, ok := t.startSpark(skill, level)
		if t.trace {
			t.log.Info(t.ctx, "spark",
				logger.Bool("activated", ok),
				logger.Int("consumed", consumed),
				logger.Int("bonus", bonus),
				logger.Int("charges_left", s.sparkCharges),
			)
		}
		s.last = copyable{src: src}
	case model.Amplify, model.Encore:
		// handled by activate and never copied
	default:
		t.log.Warn(t.ctx, "unknown skill type", logger.String("skill", string(skill.Type)))
	}
}

// checkScoreTriggers fires Score skills until no tracker is at or below the
// current score. Gains made by skills it fires are picked up by the next
// pass rather than by re-entering.
func (t *trial) checkScoreTriggers() {
	s := t.state
	if s.inScoreCheck || len(t.play.scoreSlots) == 0 {
		return
	}
	s.inScoreCheck = true
	defer func() { s.inScoreCheck = false }()

	for pass := 0; pass < maxScorePasses; pass++ {
		var hit []int
		for _, slot := range t.play.scoreSlots {
			next := s.scoreTrackers[slot]
			if s.totalScore >= next {
				s.scoreTrackers[slot] = next + t.play.thresholds[slot]
				hit = append(hit, slot)
			}
		}
		if len(hit) == 0 {
			return
		}
		t.resolve(model.Score, hit)
	}
	t.play.log.Warn(t.ctx, "score trigger passes exhausted",
		logger.Int("trial", t.index+1),
		logger.Int("score", s.totalScore),
	)
}

// yearGroup removes character from every tracker waiting on it and fires
// receivers whose trackers emptied.
func (t *trial) yearGroup(character string) {
	s := t.state
	if character == "" || len(s.yearTrackers) == 0 {
		return
	}
	if s.yearDepth >= maxYearGroupDepth {
		t.play.log.Warn(t.ctx, "year group chain too deep", logger.Int("trial", t.index+1))
		return
	}
	s.yearDepth++
	defer func() { s.yearDepth-- }()

	for _, slot := range t.play.yearSlots {
		required := s.yearTrackers[slot]
		if _, waiting := required[character]; !waiting {
			continue
		}
		delete(required, character)
		if len(required) > 0 {
			continue
		}
		t.resolve(model.YearGroup, []int{slot})
		s.yearTrackers[slot] = t.play.yearMembers(slot)
	}
}
