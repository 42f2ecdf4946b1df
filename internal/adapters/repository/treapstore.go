package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: projected score DESC, then roster ID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the
// leaderboard from best to worst and the rightmost node is the next
// eviction victim.

const defaultCapacity = 1000

// scoreScale keeps six decimals; projected scores are small sums of
// averages so this never overflows.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt64/scoreScale:
		return scoreFP(math.MaxInt64)
	case x <= math.MinInt64/scoreScale:
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

// record is a stored roster plus the time it was saved.
type record struct {
	roster  model.Roster
	score   scoreFP
	savedAt time.Time
}

func (r record) entry() Entry {
	return Entry{
		RosterID:       r.roster.ID,
		Formation:      r.roster.Formation,
		Budget:         r.roster.Budget,
		ProjectedScore: r.roster.ProjectedScore,
		TotalCost:      r.roster.TotalCost,
		Filled:         r.roster.Filled,
		Slots:          r.roster.Slots,
		SavedAt:        r.savedAt,
	}
}

// treap node
type node struct {
	id    string
	score scoreFP
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

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// last returns the lowest-ranked node.
func last(n *node) *node {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

// TreapStore is a bounded roster history ordered by projected score.
type TreapStore struct {
	mu       sync.RWMutex
	root     *node
	byID     map[string]record
	capacity int
	now      func() time.Time
}

var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:     make(map[string]record),
		capacity: defaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateStoredRosters(0)
	return s
}

// Capacity returns the maximum number of rosters kept.
func (s *TreapStore) Capacity() int {
	return s.capacity
}

// Save implements Store.Save with O(log n) expected time.
func (s *TreapStore) Save(_ context.Context, r model.Roster) error {
	if r.ID == "" {
		return ErrInvalidRoster
	}
	ns := toFixedPoint(r.ProjectedScore)

	s.mu.Lock()
	if old, ok := s.byID[r.ID]; ok {
		s.root = deleteNode(s.root, r.ID, old.score)
	}
	s.byID[r.ID] = record{roster: r, score: ns, savedAt: s.now()}
	s.root = insert(s.root, r.ID, ns)

	evicted := 0
	for len(s.byID) > s.capacity {
		victim := last(s.root)
		s.root = deleteNode(s.root, victim.id, victim.score)
		delete(s.byID, victim.id)
		evicted++
	}
	count := len(s.byID)
	s.mu.Unlock()

	for i := 0; i < evicted; i++ {
		metrics.RecordStoreEviction()
	}
	metrics.UpdateStoredRosters(count)
	return nil
}

// Get returns a stored roster by ID.
func (s *TreapStore) Get(_ context.Context, id string) (model.Roster, error) {
	start := time.Now()
	defer recordQueryLatency(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return model.Roster{}, ErrNotFound
	}
	return rec.roster, nil
}

// Rank returns the leaderboard row for a roster. Rosters with equal
// projected scores share a rank.
func (s *TreapStore) Rank(_ context.Context, id string) (Entry, error) {
	start := time.Now()
	defer recordQueryLatency(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.byID[id]
	if !ok {
		return Entry{}, ErrNotFound
	}

	rank := 0
	var prev scoreFP
	walk(s.root, func(n *node) bool {
		if rank == 0 || n.score != prev {
			rank++
			prev = n.score
		}
		return n.id != id
	})

	e := target.entry()
	e.Rank = rank
	return e, nil
}

// Top returns the best n rosters ordered by projected score desc.
func (s *TreapStore) Top(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer recordQueryLatency(start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	scores := make([]scoreFP, 0, cap(out))
	walk(s.root, func(nd *node) bool {
		out = append(out, s.byID[nd.id].entry())
		scores = append(scores, nd.score)
		return len(out) < n
	})
	assignRanksWithTies(out, scores)
	return out, nil
}

// Count returns the number of rosters held.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes the next consecutive rank.
func assignRanksWithTies(entries []Entry, scores []scoreFP) {
	rank := 0
	for i := range entries {
		if i == 0 || scores[i] != scores[i-1] {
			rank++
		}
		entries[i].Rank = rank
	}
}

func recordQueryLatency(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
