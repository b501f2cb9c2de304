package approval

import "time"

// Filter narrows a registry snapshot; zero values impose no constraint.
// Set fields compose by logical AND.
type Filter struct {
	EntityType       EntityType
	Level            Level
	Priority         Priority
	SLABreachedOnly  bool
}

// Matches reports whether the item satisfies every set constraint
func (f Filter) Matches(item *ApprovalItem, now time.Time) bool {
	if f.EntityType != "" && item.EntityType != f.EntityType {
		return false
	}
	if f.Level != "" && item.Level != f.Level {
		return false
	}
	if f.Priority != "" && item.Priority != f.Priority {
		return false
	}
	if f.SLABreachedOnly && !item.IsSLABreached(now) {
		return false
	}
	return true
}

// Group is one entity-type partition of a filtered view
type Group struct {
	EntityType  EntityType      `json:"entity_type"`
	Label       string          `json:"label"`
	Items       []*ApprovalItem `json:"items"`
	Count       int             `json:"count"`
	TotalAmount float64         `json:"total_amount"`
}

// BuildView filters the snapshot and partitions it by entity type.
// Groups appear in the order each type is first seen in the filtered
// sequence, not alphabetically. Aggregates are derived alongside the
// grouping, never stored.
func BuildView(items []*ApprovalItem, filter Filter, now time.Time) []Group {
	var groups []Group
	index := make(map[EntityType]int)

	for _, item := range items {
		if !filter.Matches(item, now) {
			continue
		}
		i, seen := index[item.EntityType]
		if !seen {
			i = len(groups)
			index[item.EntityType] = i
			groups = append(groups, Group{
				EntityType: item.EntityType,
				Label:      item.EntityType.Label(),
			})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Count++
		groups[i].TotalAmount += item.Amount
	}

	return groups
}
