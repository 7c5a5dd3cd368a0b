package server

import (
	"sync/atomic"

	"example.com/radgate/internal/icd"
)

// outcomeRing retains the most recent decode outcomes for the /recent
// endpoint. Each slot is an atomic pointer so the reception paths publish
// completed outcomes without a lock and readers see either the previous
// outcome or the new one, never partial state.
type outcomeRing struct {
	slots    []atomic.Pointer[icd.DecodeOutcome]
	capacity uint64
	total    atomic.Uint64
}

func newOutcomeRing(capacity int) *outcomeRing {
	if capacity <= 0 {
		capacity = 256
	}
	return &outcomeRing{
		slots:    make([]atomic.Pointer[icd.DecodeOutcome], capacity),
		capacity: uint64(capacity),
	}
}

func (r *outcomeRing) add(o *icd.DecodeOutcome) {
	id := r.total.Add(1)
	r.slots[(id-1)%r.capacity].Store(o)
}

// recent returns up to n outcomes, newest first.
func (r *outcomeRing) recent(n int) []*icd.DecodeOutcome {
	total := r.total.Load()
	avail := total
	if avail > r.capacity {
		avail = r.capacity
	}
	if uint64(n) < avail {
		avail = uint64(n)
	}
	out := make([]*icd.DecodeOutcome, 0, avail)
	for i := uint64(0); i < avail; i++ {
		idx := (total - 1 - i) % r.capacity
		if o := r.slots[idx].Load(); o != nil {
			out = append(out, o)
		}
	}
	return out
}
