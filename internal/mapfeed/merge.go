package mapfeed

import (
	"sort"
	"sync"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// Merger reconciles query responses, which may arrive out of order, into a
// single consistent displayed run set. Each issued query is stamped with a
// strictly increasing sequence number; a response for a query older than
// the newest one already merged is dropped, so a slow response can never
// rewind the map to stale markers.
type Merger struct {
	mu            sync.Mutex
	nextSeq       uint64
	highestMerged uint64
	anyMerged     bool
	runs          map[string]domain.Run
}

// NewMerger creates an empty Merger.
func NewMerger() *Merger {
	return &Merger{runs: make(map[string]domain.Run)}
}

// Next stamps a new query with the next sequence number.
func (m *Merger) Next() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	return m.nextSeq
}

// Apply merges a response. Stale responses are discarded silently and
// Apply reports false; they are expected under normal panning, not errors.
// Otherwise the displayed set is replaced wholesale, deduplicated by run
// ID with the last record in the batch winning, and the high-water mark
// advances even when the replacement is a no-op set.
func (m *Merger) Apply(seq uint64, runs []domain.Run) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.anyMerged && seq < m.highestMerged {
		return false
	}

	next := make(map[string]domain.Run, len(runs))
	for _, r := range runs {
		next[r.ID] = r
	}
	m.runs = next
	m.highestMerged = seq
	m.anyMerged = true
	return true
}

// Runs returns a snapshot of the displayed set, ordered by run ID so
// repeated renders are stable.
func (m *Merger) Runs() []domain.Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of displayed runs.
func (m *Merger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}
