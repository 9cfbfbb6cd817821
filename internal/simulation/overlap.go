package simulation

import (
	"sort"

	"github.com/newthinker/bankroll/internal/core"
)

// overlapIndex answers "how many active trades span row i's whole interval".
//
// The count is intentionally non-causal: it looks at every row whose start is at or
// before row i's start, including later rows with an equal start time, and reads
// whatever skip status those rows carry at the moment of the query.
type overlapIndex struct {
	starts []int64 // unix nanos, ascending; seed row excluded
	ends   []int64
}

func newOverlapIndex(trades []core.TradeRecord) *overlapIndex {
	idx := &overlapIndex{
		starts: make([]int64, len(trades)),
		ends:   make([]int64, len(trades)),
	}
	for i, t := range trades {
		idx.starts[i] = t.StartTime.UnixNano()
		idx.ends[i] = t.EndTime.UnixNano()
	}
	return idx
}

// count returns the number of trades j with start_j <= start_i, end_j >= end_i and
// active(j). Trade indices are ledger positions, i.e. row index minus one.
func (o *overlapIndex) count(i int, active func(j int) bool) int {
	start, end := o.starts[i], o.ends[i]
	// ledger is sorted by start, so candidates are a prefix
	hi := sort.Search(len(o.starts), func(k int) bool { return o.starts[k] > start })

	n := 0
	for j := 0; j < hi; j++ {
		if o.ends[j] >= end && active(j) {
			n++
		}
	}
	return n
}
