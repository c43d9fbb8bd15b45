package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// AccessSession tracks one stay of a client inside the facility. A session
// with a null ExitTime is "open": the client is currently inside. The
// tracker guarantees at most one open session per client.
type AccessSession struct {
	ID        int       `json:"id"`
	GuardID   null.Int  `json:"guard_id"`
	ClientID  int       `json:"client_id"`
	PlateNum  string    `json:"plate_num"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  null.Time `json:"exit_time"`
}

// Open reports whether the client is still inside.
func (s *AccessSession) Open() bool {
	return !s.ExitTime.Valid
}
