package workflow

// Status represents a draft's position in the approval lifecycle
type Status string

const (
	StatusPending     Status = "pending"
	StatusReady       Status = "ready"
	StatusGenerating  Status = "generating"
	StatusReview      Status = "review"
	StatusRevision    Status = "revision"
	StatusApproval    Status = "approval"
	StatusApproved    Status = "approved"
	StatusDistributed Status = "distributed"
	StatusFailed      Status = "failed"
)

var validStatuses = map[Status]bool{
	StatusPending:     true,
	StatusReady:       true,
	StatusGenerating:  true,
	StatusReview:      true,
	StatusRevision:    true,
	StatusApproval:    true,
	StatusApproved:    true,
	StatusDistributed: true,
	StatusFailed:      true,
}

// terminalStatuses have no outgoing transitions. failed is not terminal:
// bounded retries re-enter generating.
var terminalStatuses = map[Status]bool{
	StatusDistributed: true,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is part of the workflow vocabulary
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no registered transition leaves the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}
