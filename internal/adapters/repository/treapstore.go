package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/simulation"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then trial index ASC (deterministic).
// "less" means ranks earlier, so in-order traversal produces the ranking
// from best to worst. Subtree sizes give rank and select in O(log n).

// treap node
type node struct {
	trial int
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aTrial) should appear before
// (bScore, bTrial) in the ranking.
func less(aScore, aTrial, bScore, bTrial int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aTrial < bTrial
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, trial, score int, prio uint64) *node {
	if n == nil {
		return &node{trial: trial, score: score, prio: prio, size: 1}
	}
	if less(score, trial, n.score, n.trial) {
		n.left = insert(n.left, trial, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, trial, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, trial, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && trial == n.trial {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, trial, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, trial, score)
		}
	} else if less(score, trial, n.score, n.trial) {
		n.left = deleteNode(n.left, trial, score)
	} else {
		n.right = deleteNode(n.right, trial, score)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of (score, trial), or 0 if absent.
func rankOf(n *node, trial, score int) int {
	rank := 1
	for n != nil {
		switch {
		case n.trial == trial && n.score == score:
			return rank + nsize(n.left)
		case less(score, trial, n.score, n.trial):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// selectAt returns the node at 1-based position k.
func selectAt(n *node, k int) *node {
	for n != nil {
		left := nsize(n.left)
		switch {
		case k <= left:
			n = n.left
		case k == left+1:
			return n
		default:
			k -= left + 1
			n = n.right
		}
	}
	return nil
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore ranks trial results in memory. It is safe for concurrent use.
type TreapStore struct {
	mu      sync.RWMutex
	root    *node
	byTrial map[int]simulation.TrialResult
	seed    uint64
	rng     *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byTrial: make(map[int]simulation.TrialResult),
		seed:    uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15)) //nolint:gosec // tree balancing only

	metrics.UpdateRepositoryRecordsTotal(0)
	return s
}

// Record implements Store.Record with O(log n) expected time.
func (s *TreapStore) Record(ctx context.Context, res simulation.TrialResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("record trial %d: %w", res.Index, err)
	}

	s.mu.Lock()
	if old, ok := s.byTrial[res.Index]; ok {
		s.root = deleteNode(s.root, res.Index, old.Score)
	}
	s.byTrial[res.Index] = res
	s.root = insert(s.root, res.Index, res.Score, s.rng.Uint64())
	count := len(s.byTrial)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(count)
	return nil
}

// Rank returns the position and result of a trial in O(log n).
func (s *TreapStore) Rank(_ context.Context, trial int) (Entry, error) {
	defer observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byTrial[trial]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("trial %d: %w", trial, ErrNotFound)
	}
	return s.entry(res, rankOf(s.root, trial, res.Score)), nil
}

// TopN returns the best n trials ordered by score desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	defer observeQuery(time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byTrial)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		out[i] = s.entry(s.byTrial[nd.trial], i+1)
	}
	return out, nil
}

// Percentile returns the nearest-rank trial at percentile p.
func (s *TreapStore) Percentile(_ context.Context, p float64) (Entry, error) {
	defer observeQuery(time.Now())

	if math.IsNaN(p) || p < 0 || p > 100 {
		metrics.RecordErrorByComponent("repository", "invalid_percentile")
		return Entry{}, fmt.Errorf("%w: got %v", ErrInvalidPercentile, p)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.byTrial)
	if n == 0 {
		return Entry{}, ErrNotFound
	}
	k := max(int(math.Ceil(p/100*float64(n))), 1)
	pos := n - k + 1
	nd := selectAt(s.root, pos)
	return s.entry(s.byTrial[nd.trial], pos), nil
}

// Count returns the total number of trials.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTrial)
}

func (s *TreapStore) entry(res simulation.TrialResult, rank int) Entry {
	return Entry{
		Rank:         rank,
		Trial:        res.Index,
		Score:        res.Score,
		PerfectRatio: res.PerfectRatio(),
		LockUptime:   res.LockUptime,
	}
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(time.Since(start).Seconds())
}
