package approval

import "time"

// Stats is the aggregate view over a full registry snapshot
type Stats struct {
	PendingCount  int                `json:"pending_count"`
	ApprovedToday int                `json:"approved_today"`
	RejectedToday int                `json:"rejected_today"`
	SLABreached   int                `json:"sla_breached"`
	ByType        map[EntityType]int `json:"by_type"`
	ByLevel       map[Level]int      `json:"by_level"`
}

// ComputeStats recomputes every counter from the unfiltered snapshot.
// Nothing is cached or maintained incrementally, so the numbers cannot
// drift after mutations.
func ComputeStats(items []*ApprovalItem, now time.Time) Stats {
	stats := Stats{
		ByType:  make(map[EntityType]int),
		ByLevel: make(map[Level]int),
	}

	year, month, day := now.Date()

	for _, item := range items {
		switch item.Status {
		case StatusPending:
			stats.PendingCount++
			stats.ByType[item.EntityType]++
			stats.ByLevel[item.Level]++
			if BreachStatus(now, item.SLADueAt, item.IsSLABreached(now)) == BreachBreached {
				stats.SLABreached++
			}
		case StatusApproved:
			if item.ResolvedAt != nil && sameDay(*item.ResolvedAt, year, month, day) {
				stats.ApprovedToday++
			}
		case StatusRejected:
			if item.ResolvedAt != nil && sameDay(*item.ResolvedAt, year, month, day) {
				stats.RejectedToday++
			}
		}
	}

	return stats
}

func sameDay(t time.Time, year int, month time.Month, day int) bool {
	ty, tm, td := t.Date()
	return ty == year && tm == month && td == day
}
