package attribution

import (
	"sort"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
)

// clusterIndex aggregates domain and timing patterns across the whole lead
// batch, attributed leads included. Referral scoring reads it; it is built
// once per run.
type clusterIndex struct {
	domains map[string]int
	dates   map[time.Time]int // midnight UTC -> lead count
	hours   map[time.Time]int // floored hour UTC -> lead count
	times   []time.Time       // sorted, leads with valid timestamps only
}

func buildClusterIndex(leads []*model.Lead) *clusterIndex {
	ix := &clusterIndex{
		domains: make(map[string]int),
		dates:   make(map[time.Time]int),
		hours:   make(map[time.Time]int),
	}
	for _, l := range leads {
		if d := l.Domain(); d != "" {
			ix.domains[d]++
		}
		if l.FirstInquiryAt == nil {
			continue
		}
		t := l.FirstInquiryAt.UTC()
		ix.dates[truncateDay(t)]++
		ix.hours[t.Truncate(time.Hour)]++
		ix.times = append(ix.times, t)
	}
	sort.Slice(ix.times, func(i, j int) bool { return ix.times[i].Before(ix.times[j]) })
	return ix
}

// countWithin counts batch timestamps in [t-window, t+window], inclusive.
// The caller's own timestamp is part of the count.
func (ix *clusterIndex) countWithin(t time.Time, window time.Duration) int {
	lo := t.Add(-window)
	hi := t.Add(window)
	first := sort.Search(len(ix.times), func(i int) bool { return !ix.times[i].Before(lo) })
	last := sort.Search(len(ix.times), func(i int) bool { return ix.times[i].After(hi) })
	return last - first
}
