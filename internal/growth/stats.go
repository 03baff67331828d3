package growth

import "time"

// Stats are the dashboard counters derived from one user's log.
type Stats struct {
	TotalEntries   int      `json:"totalEntries"`
	MaxWeight      *float64 `json:"maxWeight"`
	StableOrLoss   int      `json:"stableOrLoss"`
	ThisMonthCount int      `json:"thisMonthCount"`
}

// Summarize reduces entries to Stats. The current month is taken from now
// in now's location.
func Summarize(entries []Entry, now time.Time) Stats {
	var s Stats
	y, m, _ := now.Date()
	for _, e := range entries {
		s.TotalEntries++
		if e.Weight != nil && (s.MaxWeight == nil || *e.Weight > *s.MaxWeight) {
			w := *e.Weight
			s.MaxWeight = &w
		}
		if e.TrendStatus == Stable || e.TrendStatus == Loss {
			s.StableOrLoss++
		}
		if ey, em, _ := e.RecordedAt.In(now.Location()).Date(); ey == y && em == m {
			s.ThisMonthCount++
		}
	}
	return s
}
