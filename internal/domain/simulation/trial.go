package simulation

import (
	"context"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/metrics"
)

// TrialResult is the outcome of one trial.
type TrialResult struct {
	Index       int
	Score       int
	PerfectHits int
	NotesHit    int
	HoldStarts  int
	// LockUptime is the song time covered by at least one Perfect Lock.
	LockUptime  float64
	CoinFlip    bool
	Activations map[model.SkillType]int
}

// PerfectRatio is Perfect judgments over all judgments, hold starts included.
func (r TrialResult) PerfectRatio() float64 {
	judged := r.NotesHit + r.HoldStarts
	if judged == 0 {
		return 0
	}
	return float64(r.PerfectHits) / float64(judged)
}

// trial runs one playthrough. The processor, resolver and effect code are
// all methods on it so they share the state and the generator.
type trial struct {
	ctx   context.Context
	play  *Play
	index int
	rng   Rand
	log   logger.Logger
	trace bool

	state *trialState
	queue *eventQueue
}

func (p *Play) newTrial(ctx context.Context, index int, rng Rand) *trial {
	// The coin flip is the first draw of every trial.
	coinFlip := rng.Float64() < 0.5

	t := &trial{
		ctx:   ctx,
		play:  p,
		index: index,
		rng:   rng,
		log:   p.log,
		trace: p.detailed,
		state: newTrialState(p.songEnd, coinFlip),
		queue: newEventQueue(p.timeline, 32),
	}
	if !t.trace {
		t.log = logger.Nop()
	}

	for _, slot := range p.scoreSlots {
		t.state.scoreTrackers[slot] = p.thresholds[slot]
	}
	for _, slot := range p.yearSlots {
		t.state.yearTrackers[slot] = p.yearMembers(slot)
	}
	t.state.slotPPN = p.basePPN
	return t
}

// run pops and dispatches until the song ends or nothing is left.
func (t *trial) run() {
	if t.trace {
		t.log.Info(t.ctx, "trial started",
			logger.Int("trial", t.index+1),
			logger.Bool("amplify_first", t.state.coinFlip),
		)
	}
	for !t.state.ended {
		e, ok := t.queue.pop()
		if !ok {
			return
		}
		t.dispatch(e)
	}
}

func (t *trial) result() TrialResult {
	s := t.state
	if s.lockOpen {
		s.uptime = append(s.uptime, interval{start: s.lockStart, end: min(s.now, s.songEnd)})
		s.lockOpen = false
	}
	acts := make(map[model.SkillType]int, len(s.activations))
	for k, v := range s.activations {
		acts[k] = v
	}
	return TrialResult{
		Index:       t.index,
		Score:       s.totalScore,
		PerfectHits: s.perfectHits,
		NotesHit:    s.notesHit,
		HoldStarts:  s.holdStarts,
		LockUptime:  mergedLength(s.uptime),
		CoinFlip:    s.coinFlip,
		Activations: acts,
	}
}

func (t *trial) flushMetrics(res TrialResult, elapsed time.Duration) {
	metrics.RecordTrial(res.Score, elapsed.Seconds())
	metrics.RecordTrialDiagnostics(res.LockUptime, res.PerfectRatio())
	for _, k := range eventKinds {
		metrics.RecordEvents(k.String(), t.state.events[k])
	}
	for k, v := range t.state.activations {
		metrics.RecordSkillActivations(string(k), v)
	}
	for k, v := range t.state.failures {
		metrics.RecordSkillFailures(string(k), v)
	}
	for k, v := range t.state.rejections {
		metrics.RecordSingletonRejections(string(k), v)
	}
}

// mergedLength sums the union of possibly overlapping intervals.
func mergedLength(in []interval) float64 {
	if len(in) == 0 {
		return 0
	}
	ivs := append([]interval(nil), in...)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })

	total := 0.0
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.start <= cur.end {
			cur.end = max(cur.end, iv.end)
			continue
		}
		total += cur.end - cur.start
		cur = iv
	}
	return total + cur.end - cur.start
}

func formatScore(v int) string { return humanize.Comma(int64(v)) }
