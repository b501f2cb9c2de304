package event

// Type identifies the type of lifecycle event
type Type string

const (
	TypeItemSubmitted   Type = "item.submitted"
	TypeItemApproved    Type = "item.approved"
	TypeItemRejected    Type = "item.rejected"
	TypeItemEscalated   Type = "item.escalated"
	TypeItemSLABreached Type = "item.sla_breached"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeItemSubmitted,
		TypeItemApproved,
		TypeItemRejected,
		TypeItemEscalated,
		TypeItemSLABreached:
		return true
	default:
		return false
	}
}
