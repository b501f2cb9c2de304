package approval

// Priority expresses the urgency of an approval item
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityNormal: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// IsValid returns true if the priority is a known urgency class
func (p Priority) IsValid() bool {
	return validPriorities[p]
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}
