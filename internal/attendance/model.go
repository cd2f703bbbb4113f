package attendance

import "time"

// DateLayout is the calendar-day format stored on logs.
const DateLayout = "2006-01-02"

// Action is the transition a scan produced.
type Action string

const (
	ActionCheckIn  Action = "checkin"
	ActionCheckOut Action = "checkout"
)

// Log is one visit: opened on check-in, closed exactly once on check-out.
type Log struct {
	ID              string    `json:"id"`
	MemberID        string    `json:"user_id"`
	Date            string    `json:"date"`
	CheckInMinutes  int       `json:"checkInTime"`
	CheckoutMinutes *int      `json:"checkoutTime,omitempty"`
	WorkedMinutes   *int      `json:"workedMinutes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Open reports whether the log still awaits its check-out.
func (l Log) Open() bool { return l.CheckoutMinutes == nil }

// Result is what the ledger did for one scan.
type Result struct {
	Action Action
	Log    Log
}

// WorkedMinutes returns out-in, floored at zero. A visit spanning midnight
// therefore counts as zero minutes.
func WorkedMinutes(in, out int) int {
	if out < in {
		return 0
	}
	return out - in
}
