package simulation

import (
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/scoring"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
)

// dispatch advances the clock to e and runs its handler.
func (t *trial) dispatch(e Event) {
	s := t.state
	s.now = e.Time
	s.events[e.Kind]++

	switch e.Kind {
	case NoteSpawn:
		t.onSpawn(e.Payload.(NotePayload))
	case TimeSkill:
		t.resolve(model.Time, []int{e.Payload.(SlotPayload).Slot})
	case LockEnd:
		t.onLockEnd(e.Payload.(LockPayload))
	case SyncEnd:
		p := e.Payload.(EffectPayload)
		if sy := s.syncs[p.Slot]; sy != nil && sy.id == p.ID {
			s.syncs[p.Slot] = nil
			t.recalculate()
		}
	case SkillRateUpEnd:
		if p := e.Payload.(EffectPayload); s.sru != nil && s.sru.id == p.ID {
			s.sru = nil
		}
	case AppealBoostEnd:
		if p := e.Payload.(EffectPayload); s.appeal != nil && s.appeal.id == p.ID {
			s.appeal = nil
			t.recalculate()
		}
	case PerfectScoreUpEnd:
		delete(s.psu, e.Payload.(EffectPayload).ID)
	case ComboBonusUpEnd:
		delete(s.cbu, e.Payload.(EffectPayload).ID)
	case SparkEnd:
		delete(s.spark, e.Payload.(EffectPayload).ID)
	case NoteStart:
		t.onHoldStart(e.Payload.(NotePayload).Note)
	case NoteCompletion:
		t.onNoteCompletion(e.Payload.(NotePayload).Note)
	case SongEnd:
		s.ended = true
	}

	if t.trace {
		t.log.Info(t.ctx, "event",
			logger.Float64("t", e.Time),
			logger.String("kind", e.Kind.String()),
			logger.Int("score", s.totalScore),
			logger.Int("combo", s.combo),
		)
	}
}

func (t *trial) onSpawn(NotePayload) {
	s := t.state
	s.spawns++
	t.counterTriggers(model.RhythmIcons, s.spawns)
}

func (t *trial) onLockEnd(p LockPayload) {
	if p.Trick {
		if !t.state.trickActive() {
			t.recalculate()
		}
		return
	}
	t.endLock()
}

// onHoldStart judges the head of a hold note.
func (t *trial) onHoldStart(note int) {
	s := t.state
	s.holdStarts++
	if t.rng.Float64() <= t.play.cfg.Accuracy {
		s.holdResults[note] = perfect
		s.perfectHits++
		t.counterTriggers(model.Perfects, s.perfectHits)
		return
	}
	s.holdResults[note] = great
}

// onNoteCompletion judges and scores a note, then cascades to the counter,
// star and score triggers.
func (t *trial) onNoteCompletion(idx int) {
	s := t.state
	p := t.play
	note := p.song.Notes[idx]

	natural := t.rng.Float64() <= p.cfg.Accuracy
	if note.IsHold() {
		if r, ok := s.holdResults[idx]; ok && r == great {
			natural = false
		}
	}
	forced := s.forcingPerfect()
	locked := s.lockCount > 0

	hit := great
	if natural || forced {
		hit = perfect
	}
	if hit == perfect {
		s.perfectHits++
		t.counterTriggers(model.Perfects, s.perfectHits)
	}

	accuracy := scoring.GreatAccuracy
	switch {
	case natural:
		accuracy = scoring.PerfectAccuracy
	case forced && locked:
		accuracy = scoring.LockedAccuracy
	case forced:
		accuracy = scoring.PerfectAccuracy
	}

	if slot := note.Position - 1; slot >= 0 && slot < model.SlotCount {
		points := scoring.NoteScore(s.slotPPN[slot],
			scoring.NoteMultiplier(note),
			p.data.ComboMultiplier(s.combo),
			accuracy,
		)
		if hit == perfect {
			for _, v := range s.psu {
				points += v
			}
		}
		if len(s.cbu) > 0 {
			fever := p.data.FeverMultiplier(s.combo)
			bonus := 0
			for _, v := range s.cbu {
				bonus += scoring.FloorProduct(v, fever)
			}
			points += min(bonus, p.data.MaxComboFeverBonus())
		}
		for _, v := range s.spark {
			points += v
		}
		s.totalScore += points

		if t.trace {
			t.log.Info(t.ctx, "note hit",
				logger.Float64("t", s.now),
				logger.Int("note", idx+1),
				logger.Int("slot", slot+1),
				logger.String("judgment", hit.String()),
				logger.String("kind", note.Kind()),
				logger.Int("points", points),
			)
		}
	}

	s.notesHit++
	s.combo++
	t.counterTriggers(model.Combo, s.combo)
	if note.IsStar {
		t.resolve(model.StarNotes, p.starSlots)
	}
	t.checkScoreTriggers()
}

// counterTriggers fires skills whose threshold divides count.
func (t *trial) counterTriggers(trigger model.Trigger, count int) {
	if count <= 0 {
		return
	}
	var hit []int
	for _, slot := range t.play.counterSlots[trigger] {
		if th := t.play.thresholds[slot]; th > 0 && count%th == 0 {
			hit = append(hit, slot)
		}
	}
	t.resolve(trigger, hit)
}
