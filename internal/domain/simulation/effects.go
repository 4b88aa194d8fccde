package simulation

import (
	"github.com/google/uuid"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/scoring"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
)

// recalculate rebuilds live stats and points per note from the base stats
// and the running stat effects. Layers apply in a fixed order: appeal boost,
// then sync copies in slot order, then trick passives against base stats.
func (t *trial) recalculate() {
	p := t.play
	s := t.state
	base := p.baseStats
	cur := base

	if a := s.appeal; a != nil {
		for _, i := range a.targets {
			cur[i] = cur[i].Map(func(v int) int { return scoring.Boost(v, a.value) })
		}
	}

	for i, sy := range s.syncs {
		if sy != nil {
			cur[i] = cur[sy.target]
		}
	}

	if s.forcingPerfect() {
		for i, passives := range p.tricks {
			for _, ps := range passives {
				bonus := scoring.CeilScale(base[i].Get(ps.Attribute), ps.Value)
				cur[i] = cur[i].With(ps.Attribute, cur[i].Get(ps.Attribute)+bonus)
			}
		}
	}

	s.slotPPN = p.ppnFor(p.teamTotal(cur))
}

// endTime clamps an effect's end to the song end.
func (t *trial) endTime(duration float64) float64 {
	return min(t.state.now+duration, t.state.songEnd)
}

func (t *trial) schedule(kind EventKind, duration float64, payload Payload) {
	t.queue.push(Event{Time: t.endTime(duration), Kind: kind, Payload: payload})
}

// applyScore adds a Scorer or Healer gain using the passives of slot.
func (t *trial) applyScore(skill *model.Skill, slot, level int) int {
	value := skill.Value(level)
	passives := &t.play.team.Slots[slot]

	gain := 0
	switch skill.Type {
	case model.Scorer:
		charm := passives.PassiveSum(model.CharmEffect)
		if charm == 0 {
			charm = 1
		}
		gain = scoring.TruncProduct(value, charm)
	case model.Healer:
		if passives.HasPassive(model.HealEffect) {
			gain = scoring.TruncProduct(value, float64(t.play.data.HealMultiplier()))
		}
	}
	if gain > 0 {
		t.state.totalScore += gain
	}
	return gain
}

func (t *trial) startLock(duration float64) {
	s := t.state
	if s.lockCount == 0 && !s.lockOpen {
		s.lockOpen = true
		s.lockStart = s.now
	}
	s.lockCount++
	t.schedule(LockEnd, duration, LockPayload{})
	t.recalculate()
}

func (t *trial) endLock() {
	s := t.state
	if s.lockCount == 0 {
		return
	}
	s.lockCount--
	if s.lockCount == 0 && s.lockOpen {
		s.uptime = append(s.uptime, interval{start: s.lockStart, end: min(s.now, s.songEnd)})
		s.lockOpen = false
	}
	t.recalculate()
}

// startTrick extends the shared trick window. A lock-end event tagged as
// trick re-evaluates stats when the window lapses.
func (t *trial) startTrick(duration float64) {
	s := t.state
	end := t.endTime(duration)
	if end <= s.trickEnd {
		return
	}
	s.trickEnd = end
	t.queue.push(Event{Time: end, Kind: LockEnd, Payload: LockPayload{Trick: true}})
	t.recalculate()
}

func (t *trial) startSkillRateUp(src *skillSource, skill *model.Skill, slot, level int) bool {
	s := t.state
	if s.sru != nil {
		t.reject(src, skill.Type)
		return false
	}
	s.sru = &sruEffect{id: uuid.New(), slot: slot, value: skill.Value(level)}
	t.schedule(SkillRateUpEnd, skill.Duration(level), EffectPayload{ID: s.sru.id, Slot: slot})
	return true
}

func (t *trial) startAppealBoost(src *skillSource, skill *model.Skill, slot, level int) bool {
	s := t.state
	if s.appeal != nil {
		t.reject(src, skill.Type)
		return false
	}

	var targets []int
	switch skill.Target {
	case "", model.SelfTarget:
		targets = []int{slot}
	default:
		members := t.play.data.GroupMembers(skill.Target)
		for i := range t.play.team.Slots {
			if containsString(members, t.play.team.Slots[i].Character()) {
				targets = append(targets, i)
			}
		}
	}
	if len(targets) == 0 {
		return false
	}

	s.appeal = &appealEffect{id: uuid.New(), slot: slot, value: skill.Value(level), targets: targets}
	t.schedule(AppealBoostEnd, skill.Duration(level), EffectPayload{ID: s.appeal.id, Slot: slot})
	t.recalculate()
	return true
}

// startSync copies a random teammate from the target sub-group into slot.
func (t *trial) startSync(skill *model.Skill, slot, level int) (int, bool) {
	if skill.Target == "" {
		return -1, false
	}
	members := t.play.data.SubGroupMembers(skill.Target)
	var candidates []int
	for i := range t.play.team.Slots {
		if i != slot && containsString(members, t.play.team.Slots[i].Character()) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1, false
	}

	target := candidates[t.rng.Intn(len(candidates))]
	eff := &syncEffect{id: uuid.New(), target: target}
	t.state.syncs[slot] = eff
	t.schedule(SyncEnd, skill.Duration(level), EffectPayload{ID: eff.id, Slot: slot})
	t.recalculate()
	return target, true
}

func (t *trial) startPerfectScoreUp(skill *model.Skill, level int) {
	id := uuid.New()
	t.state.psu[id] = int(skill.Value(level))
	t.schedule(PerfectScoreUpEnd, skill.Duration(level), EffectPayload{ID: id})
}

func (t *trial) startComboBonusUp(skill *model.Skill, level int) {
	id := uuid.New()
	t.state.cbu[id] = skill.Value(level)
	t.schedule(ComboBonusUpEnd, skill.Duration(level), EffectPayload{ID: id})
}

// startSpark converts whole multiples of the threshold into a per-tap bonus.
func (t *trial) startSpark(skill *model.Skill, level int) (consumed, bonus int, ok bool) {
	s := t.state
	threshold := skill.Threshold(level)
	if threshold <= 0 || s.sparkCharges < threshold {
		return 0, 0, false
	}
	mult := s.sparkCharges / threshold
	consumed = mult * threshold
	bonus = scoring.TruncProduct(skill.Value(level), float64(mult))
	s.sparkCharges -= consumed

	id := uuid.New()
	s.spark[id] = bonus
	t.schedule(SparkEnd, skill.Duration(level), EffectPayload{ID: id})
	return consumed, bonus, true
}

func (t *trial) reject(src *skillSource, kind model.SkillType) {
	t.state.rejections[kind]++
	if t.trace {
		t.log.Info(t.ctx, "singleton effect already active, activation ignored",
			logger.Float64("t", t.state.now),
			logger.Int("slot", src.slot+1),
			logger.String("holder", src.name),
			logger.String("skill", string(kind)),
		)
	}
}

func containsString(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
