package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// EntryApproval is one row of the append-only audit log. Exactly one is
// written per consumed recognition, approvals and denials alike. ClientID
// is null when the plate matched no registered vehicle; GuardID is null
// when the decision was not attributable to an operator context.
type EntryApproval struct {
	ID           int       `json:"id"`
	ClientID     null.Int  `json:"client_id"`
	GuardID      null.Int  `json:"guard_id"`
	Approved     bool      `json:"approved"`
	ApprovalTime time.Time `json:"approval_time"`
}

// Status renders the verdict for display.
func (a *EntryApproval) Status() string {
	if a.Approved {
		return "Approved"
	}
	return "Denied"
}
