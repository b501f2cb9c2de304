package approval

import "time"

// ApprovalItem is one pending-or-resolved approval unit for a business document
type ApprovalItem struct {
	ID              string             `json:"id"`
	EntityType      EntityType         `json:"entity_type"`
	EntityID        string             `json:"entity_id"`
	Reference       string             `json:"reference"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Amount          float64            `json:"amount"`
	Status          Status             `json:"status"`
	Level           Level              `json:"level"`
	Priority        Priority           `json:"priority"`
	CurrentApprover string             `json:"current_approver,omitempty"`
	RequestedBy     string             `json:"requested_by"`
	RequestedAt     time.Time          `json:"requested_at"`
	SLADueAt        time.Time          `json:"sla_due_at"`
	ResolvedAt      *time.Time         `json:"resolved_at,omitempty"`
	Chain           []ApprovalChainItem `json:"approval_chain"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ApprovalChainItem records the outcome of one level visited by an item
type ApprovalChainItem struct {
	Level        Level       `json:"level"`
	ApproverName string      `json:"approver_name,omitempty"`
	Status       ChainStatus `json:"status"`
	ApprovedAt   *time.Time  `json:"approved_at,omitempty"`
	Notes        string      `json:"notes,omitempty"`
}

// IsSLABreached reports whether the item has passed its deadline without
// being resolved. Derived from now, never stored.
func (a *ApprovalItem) IsSLABreached(now time.Time) bool {
	if a.Status.IsTerminal() {
		return false
	}
	return now.After(a.SLADueAt)
}

// CurrentChainEntry returns the index of the last chain entry, or -1 if
// the chain is empty
func (a *ApprovalItem) CurrentChainEntry() int {
	return len(a.Chain) - 1
}
