package membership

import "time"

// Status is the lifecycle flag stored on a membership.
type Status string

// StatusActive is the only status that admits a member.
const StatusActive Status = "active"

// Membership is one purchased period. Renewals create new rows; rows are never mutated.
type Membership struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"user_id"`
	Status    Status    `json:"status"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the validator's verdict for a member.
type State string

const (
	StateAbsent  State = "absent"
	StateExpired State = "expired"
	StateActive  State = "active"
)

// Resolution is the result of resolving a member's latest membership.
// Membership is nil when State is StateAbsent.
type Resolution struct {
	State      State
	Membership *Membership
}

// IsActive reports whether m admits its member at now: status active and end not passed.
func IsActive(m *Membership, now time.Time) bool {
	if m == nil {
		return false
	}
	return m.Status == StatusActive && !m.EndAt.Before(now)
}
