package approval

// Status is the lifecycle state of an approval item
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	// StatusEscalated is transient: an escalation re-enters PENDING at the
	// next level within the same mutation, so stored items never carry it
	StatusEscalated Status = "ESCALATED"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusEscalated: true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsValid returns true if the status is a known lifecycle state
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if the status permits no further transitions
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ChainStatus is the outcome recorded on a single approval chain entry
type ChainStatus string

const (
	ChainPending  ChainStatus = "PENDING"
	ChainApproved ChainStatus = "APPROVED"
	ChainRejected ChainStatus = "REJECTED"
	ChainSkipped  ChainStatus = "SKIPPED"
)

var validChainStatuses = map[ChainStatus]bool{
	ChainPending:  true,
	ChainApproved: true,
	ChainRejected: true,
	ChainSkipped:  true,
}

// IsValid returns true if the chain status is a known outcome
func (c ChainStatus) IsValid() bool {
	return validChainStatuses[c]
}

// String returns the string representation of the chain status
func (c ChainStatus) String() string {
	return string(c)
}
