package approval

import (
	"fmt"
	"time"
)

// BreachLevel classifies how close a pending item is to its deadline
type BreachLevel string

const (
	BreachBreached BreachLevel = "BREACHED"
	BreachCritical BreachLevel = "CRITICAL"
	BreachWarning  BreachLevel = "WARNING"
	BreachOK       BreachLevel = "OK"
)

const (
	criticalWindow = 4 * time.Hour
	warningWindow  = 24 * time.Hour
)

// SLAConfig holds the deployment-configurable SLA windows
type SLAConfig struct {
	// BaseWindows maps each authorization level to its decision window.
	// Lower levels get wider windows.
	BaseWindows map[Level]time.Duration

	// UrgentFactor shortens the window for URGENT items, e.g. 0.5 halves it
	UrgentFactor float64
}

// DefaultSLAConfig returns the stock window table used when the
// deployment does not override it
func DefaultSLAConfig() SLAConfig {
	return SLAConfig{
		BaseWindows: map[Level]time.Duration{
			LevelL1: 120 * time.Hour,
			LevelL2: 96 * time.Hour,
			LevelL3: 72 * time.Hour,
			LevelL4: 48 * time.Hour,
			LevelL5: 24 * time.Hour,
		},
		UrgentFactor: 0.5,
	}
}

// Validate checks that every level has a positive window and the urgent
// factor is a sensible fraction
func (c SLAConfig) Validate() error {
	for _, level := range levelsDescending {
		window, ok := c.BaseWindows[level]
		if !ok || window <= 0 {
			return fmt.Errorf("sla window for %s must be positive", level)
		}
	}
	if c.UrgentFactor <= 0 || c.UrgentFactor > 1 {
		return fmt.Errorf("sla urgent factor must be in (0, 1]: %v", c.UrgentFactor)
	}
	return nil
}

// ComputeDue derives the deadline for an item created at createdAt with the
// given level and priority
func (c SLAConfig) ComputeDue(createdAt time.Time, level Level, priority Priority) time.Time {
	window := c.BaseWindows[level]
	if priority == PriorityUrgent {
		window = time.Duration(float64(window) * c.UrgentFactor)
	}
	return createdAt.Add(window)
}

// BreachStatus classifies the remaining time against the deadline.
// A true breached flag, or now past due, is BREACHED; otherwise the
// remaining hours (rounded up) fall into CRITICAL (<4h), WARNING (<24h)
// or OK buckets.
func BreachStatus(now, due time.Time, breached bool) BreachLevel {
	if breached || now.After(due) {
		return BreachBreached
	}
	remaining := due.Sub(now)
	hoursRemaining := int((remaining + time.Hour - 1) / time.Hour)
	switch {
	case hoursRemaining < 4:
		return BreachCritical
	case hoursRemaining < 24:
		return BreachWarning
	default:
		return BreachOK
	}
}

// BreachLabel renders the breach level for display, with remaining time
// for unbreached items
func BreachLabel(now, due time.Time, breached bool) string {
	level := BreachStatus(now, due, breached)
	switch level {
	case BreachBreached:
		return "SLA breached"
	case BreachCritical, BreachWarning:
		remaining := due.Sub(now)
		hoursRemaining := int((remaining + time.Hour - 1) / time.Hour)
		return fmt.Sprintf("%dh remaining", hoursRemaining)
	default:
		remaining := due.Sub(now)
		hoursRemaining := int((remaining + time.Hour - 1) / time.Hour)
		return fmt.Sprintf("%dd remaining", hoursRemaining/24)
	}
}
