package simulation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/gamedata"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
)

func ampTeam() *model.Team {
	team := &model.Team{}
	team.Slots[0] = smileSlot(8000, performer("scorer", "Honoka", model.Skill{
		Type: model.Scorer, Activation: model.Time,
		Chances: []float64{0, 0, 1}, Values: []float64{100, 200, 300},
	}))
	team.Slots[8] = smileSlot(0, performer("amp", "Umi", model.Skill{
		Type: model.Amplify, Activation: model.Time,
		Chances: []float64{1}, Values: []float64{2},
	}))
	return team
}

func TestAmplifyOrdering(t *testing.T) {
	Convey("Given an Amplify and a Scorer that only succeeds when boosted", t, func() {
		p := newTestPlay(t, ampTeam(), smileSong(100, note(90, 1)), 1, nil)

		Convey("With Amplify first the boost lands on the same trigger", func() {
			tr := newTestTrial(p, true, rolls(0.5))
			tr.resolve(model.Time, []int{0, 8})

			So(tr.state.totalScore, ShouldEqual, 300)
			So(tr.state.ampBoost, ShouldEqual, 0)
			So(tr.state.activations[model.Amplify], ShouldEqual, 1)
			So(tr.state.activations[model.Scorer], ShouldEqual, 1)
		})

		Convey("With others first the boost waits for the next activation", func() {
			tr := newTestTrial(p, false, rolls(0.5))
			tr.resolve(model.Time, []int{0, 8})

			So(tr.state.totalScore, ShouldEqual, 0)
			So(tr.state.ampBoost, ShouldEqual, 2)
			So(tr.state.failures[model.Scorer], ShouldEqual, 1)

			tr.resolve(model.Time, []int{0})
			So(tr.state.totalScore, ShouldEqual, 300)
			So(tr.state.ampBoost, ShouldEqual, 0)
			So(tr.state.last, ShouldHaveSameTypeAs, copyable{})
		})

		Convey("Amplify stacks until consumed", func() {
			tr := newTestTrial(p, false, rolls(0.5))
			tr.resolve(model.Time, []int{8})
			tr.resolve(model.Time, []int{8})
			So(tr.state.ampBoost, ShouldEqual, 4)
			So(tr.state.last, ShouldHaveSameTypeAs, amplified{})
		})
	})
}

func TestEncore(t *testing.T) {
	Convey("Given a Scorer and an Encore at a higher level", t, func() {
		team := &model.Team{}
		team.Slots[0] = smileSlot(8000, performer("scorer", "Honoka", model.Skill{
			Type: model.Scorer, Activation: model.Time, Chances: []float64{1}, Values: []float64{100, 500},
		}))
		enc := performer("encore", "Kotori", model.Skill{Type: model.Encore, Activation: model.Time, Chances: []float64{1}})
		enc.SkillLevel = 2
		team.Slots[1] = smileSlot(0, enc)
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)
		tr := newTestTrial(p, false, rolls(0.5))

		Convey("Encore replays the last skill at its own level", func() {
			tr.resolve(model.Time, []int{0, 1})
			So(tr.state.totalScore, ShouldEqual, 600)
			So(tr.state.sparkCharges, ShouldEqual, 1)
			So(tr.state.last, ShouldHaveSameTypeAs, encored{})

			Convey("and cannot copy another Encore", func() {
				tr.resolve(model.Time, []int{1})
				So(tr.state.totalScore, ShouldEqual, 600)
				So(tr.state.sparkCharges, ShouldEqual, 2)
			})
		})
	})
}

func encoreTeam(copied model.Skill) *model.Team {
	team := &model.Team{}
	team.Slots[0] = smileSlot(8000, performer("source", "Honoka", copied))
	enc := performer("encore", "Kotori", model.Skill{Type: model.Encore, Activation: model.Time, Chances: []float64{1}})
	enc.SkillLevel = 2
	team.Slots[1] = smileSlot(8000, enc)
	return team
}

func TestEncoreOriginalSlot(t *testing.T) {
	Convey("Given an Encore in slot 2 at level 2", t, func() {
		song := smileSong(100, note(90, 1))

		Convey("A copied Skill Rate Up stays bound to slot 1", func() {
			p := newTestPlay(t, encoreTeam(model.Skill{
				Type: model.SkillRateUp, Activation: model.Time,
				Chances: []float64{1}, Values: []float64{0.1, 0.3}, Durations: []float64{5},
			}), song, 1, nil)
			tr := newTestTrial(p, false, rolls(0.5))

			tr.resolve(model.Time, []int{0})
			So(tr.state.sru.slot, ShouldEqual, 0)
			So(tr.state.sru.value, ShouldEqual, 0.1)

			// the first boost lapses before the Encore fires
			tr.state.sru = nil
			tr.resolve(model.Time, []int{1})
			So(tr.state.sru, ShouldNotBeNil)
			So(tr.state.sru.slot, ShouldEqual, 0)
			So(tr.state.sru.value, ShouldEqual, 0.3)
		})

		Convey("A copied self Appeal Boost targets slot 1, not the Encore", func() {
			p := newTestPlay(t, encoreTeam(model.Skill{
				Type: model.AppealBoost, Activation: model.Time, Target: model.SelfTarget,
				Chances: []float64{1}, Values: []float64{0.1, 0.5}, Durations: []float64{5},
			}), song, 1, nil)
			tr := newTestTrial(p, false, rolls(0.5))

			tr.resolve(model.Time, []int{0})
			tr.state.appeal = nil
			tr.resolve(model.Time, []int{1})

			So(tr.state.appeal, ShouldNotBeNil)
			So(tr.state.appeal.slot, ShouldEqual, 0)
			So(tr.state.appeal.targets, ShouldResemble, []int{0})
			So(tr.state.appeal.value, ShouldEqual, 0.5)
		})

		Convey("A copied Scorer uses the original slot's charm", func() {
			team := encoreTeam(model.Skill{
				Type: model.Scorer, Activation: model.Time, Chances: []float64{1}, Values: []float64{100, 500},
			})
			team.Slots[0].Passives = []model.Passive{{Name: "charm", Effect: model.CharmEffect, Value: 2.5}}
			team.Slots[1].Passives = []model.Passive{{Name: "charm", Effect: model.CharmEffect, Value: 10}}
			p := newTestPlay(t, team, song, 1, nil)
			tr := newTestTrial(p, false, rolls(0.5))

			tr.resolve(model.Time, []int{0})
			So(tr.state.totalScore, ShouldEqual, 250)

			tr.resolve(model.Time, []int{1})
			So(tr.state.totalScore, ShouldEqual, 250+1250)
		})
	})
}

func TestAccessoryFallback(t *testing.T) {
	Convey("An accessory rolls only after its performer fails", t, func() {
		team := &model.Team{}
		slot := smileSlot(8000, performer("weak", "Honoka", model.Skill{
			Type: model.Scorer, Activation: model.Time, Chances: []float64{0.2}, Values: []float64{100},
		}))
		slot.Accessory = &model.Accessory{Name: "brooch", SkillLevel: 1, Skill: model.Skill{
			Type: model.PerfectScoreUp, Chances: []float64{1}, Values: []float64{40}, Durations: []float64{5},
		}}
		team.Slots[0] = slot
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)

		tr := newTestTrial(p, false, rolls(0.5))
		tr.resolve(model.Time, []int{0})
		So(tr.state.totalScore, ShouldEqual, 0)
		So(len(tr.state.psu), ShouldEqual, 1)
		So(countQueued(tr, PerfectScoreUpEnd), ShouldEqual, 1)

		tr = newTestTrial(p, false, rolls(0.1))
		tr.resolve(model.Time, []int{0})
		So(tr.state.totalScore, ShouldEqual, 100)
		So(len(tr.state.psu), ShouldEqual, 0)
	})
}

func TestSkillRateUp(t *testing.T) {
	Convey("Given two Skill Rate Up holders", t, func() {
		sru := model.Skill{
			Type: model.SkillRateUp, Activation: model.Time,
			Chances: []float64{1}, Values: []float64{0.3}, Durations: []float64{5},
		}
		team := &model.Team{}
		team.Slots[0] = smileSlot(8000, performer("a", "Honoka", sru))
		team.Slots[1] = smileSlot(0, performer("b", "Kotori", sru))
		team.Slots[2] = smileSlot(0, performer("c", "Umi", model.Skill{
			Type: model.Scorer, Activation: model.Time, Chances: []float64{0.25}, Values: []float64{10},
		}))
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)
		tr := newTestTrial(p, false, rolls(0.5))

		tr.resolve(model.Time, []int{0, 1})

		Convey("Only the first activation takes effect", func() {
			So(tr.state.sru.slot, ShouldEqual, 1)
			So(tr.state.rejections[model.SkillRateUp], ShouldEqual, 1)
			So(countQueued(tr, SkillRateUpEnd), ShouldEqual, 1)
		})

		Convey("Other slots roll against the boosted chance", func() {
			tr.resolve(model.Time, []int{2})
			So(tr.state.totalScore, ShouldEqual, 10)
		})

		Convey("A stale end event leaves the effect alone", func() {
			tr.dispatch(Event{Time: 1, Kind: SkillRateUpEnd, Payload: EffectPayload{Slot: 1}})
			So(tr.state.sru, ShouldNotBeNil)

			tr.dispatch(Event{Time: 5, Kind: SkillRateUpEnd, Payload: EffectPayload{ID: tr.state.sru.id, Slot: 1}})
			So(tr.state.sru, ShouldBeNil)
		})
	})
}

func TestScoreTriggers(t *testing.T) {
	scorerOn := func(value float64) *Play {
		team := &model.Team{}
		team.Slots[0] = smileSlot(8000, performer("score", "Honoka", model.Skill{
			Type: model.Scorer, Activation: model.Score,
			Thresholds: []int{100}, Chances: []float64{1}, Values: []float64{value},
		}))
		return newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)
	}

	Convey("A gain that stays under the next threshold fires once", t, func() {
		tr := newTestTrial(scorerOn(50), false, rolls(0.5))
		So(tr.state.scoreTrackers[0], ShouldEqual, 100)

		tr.state.totalScore = 100
		tr.checkScoreTriggers()
		So(tr.state.totalScore, ShouldEqual, 150)
		So(tr.state.scoreTrackers[0], ShouldEqual, 200)
		So(tr.state.activations[model.Scorer], ShouldEqual, 1)
	})

	Convey("A jump across several thresholds fires once per crossing", t, func() {
		tr := newTestTrial(scorerOn(0), false, rolls(0.5))
		tr.state.totalScore = 350
		tr.checkScoreTriggers()
		So(tr.state.activations[model.Scorer], ShouldEqual, 3)
		So(tr.state.scoreTrackers[0], ShouldEqual, 400)
	})

	Convey("A self-feeding cascade stops at the pass bound", t, func() {
		tr := newTestTrial(scorerOn(250), false, rolls(0.5))
		tr.state.totalScore = 100
		tr.checkScoreTriggers()
		So(tr.state.activations[model.Scorer], ShouldEqual, maxScorePasses)
		So(tr.state.totalScore, ShouldEqual, 100+maxScorePasses*250)
		So(tr.state.inScoreCheck, ShouldBeFalse)
	})
}

func TestYearGroup(t *testing.T) {
	Convey("Given a receiver waiting on two first-years", t, func() {
		data := gamedata.New(gamedata.WithSubGroupMapping(map[string][]string{
			"first-year": {"Rin", "Hanayo", "Maki"},
		}))
		tap := model.Skill{Type: model.Scorer, Activation: model.Time, Chances: []float64{1}, Values: []float64{10}}

		team := &model.Team{}
		team.Slots[0] = smileSlot(8000, performer("receiver", "Maki", model.Skill{
			Type: model.Scorer, Activation: model.YearGroup, Target: "first-year",
			Chances: []float64{1}, Values: []float64{1000},
		}))
		team.Slots[1] = smileSlot(0, performer("rin", "Rin", tap))
		team.Slots[2] = smileSlot(0, performer("hanayo", "Hanayo", tap))
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, data)
		tr := newTestTrial(p, false, rolls(0.5))

		So(tr.state.yearTrackers[0], ShouldContainKey, "Rin")
		So(tr.state.yearTrackers[0], ShouldNotContainKey, "Maki")

		tr.resolve(model.Time, []int{1})
		So(tr.state.totalScore, ShouldEqual, 10)
		So(tr.state.yearTrackers[0], ShouldNotContainKey, "Rin")

		tr.resolve(model.Time, []int{2})

		Convey("The receiver fires once everyone has activated and then resets", func() {
			So(tr.state.totalScore, ShouldEqual, 1020)
			So(tr.state.activations[model.Scorer], ShouldEqual, 3)
			So(len(tr.state.yearTrackers[0]), ShouldEqual, 2)
		})
	})
}

func TestRecordedActivations(t *testing.T) {
	Convey("Healers only score with a heal passive", t, func() {
		heal := model.Skill{Type: model.Healer, Activation: model.Time, Chances: []float64{1}, Values: []float64{2}}
		team := &model.Team{}
		team.Slots[0] = smileSlot(8000, performer("plain", "Honoka", heal))
		withPassive := smileSlot(0, performer("healer", "Kotori", heal))
		withPassive.Passives = []model.Passive{{Name: "heal", Effect: model.HealEffect}}
		team.Slots[1] = withPassive
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)

		tr := newTestTrial(p, false, rolls(0.5))
		tr.resolve(model.Time, []int{0})
		So(tr.state.totalScore, ShouldEqual, 0)
		tr.resolve(model.Time, []int{1})
		So(tr.state.totalScore, ShouldEqual, 960)
	})

	Convey("Charm passives scale Scorer gains", t, func() {
		slot := smileSlot(8000, performer("charmed", "Honoka", model.Skill{
			Type: model.Scorer, Activation: model.Time, Chances: []float64{1}, Values: []float64{333},
		}))
		slot.Passives = []model.Passive{{Name: "charm", Effect: model.CharmEffect, Value: 2.5}}
		team := &model.Team{}
		team.Slots[0] = slot
		p := newTestPlay(t, team, smileSong(100, note(90, 1)), 1, nil)

		tr := newTestTrial(p, false, rolls(0.5))
		tr.resolve(model.Time, []int{0})
		So(tr.state.totalScore, ShouldEqual, 832)
	})
}
