package identity

import "time"

// Identity is a member's login account. Its email encodes the member number.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Page is one slice of a keyset-paginated listing. Next is empty on the last page.
type Page struct {
	Identities []Identity
	Next       string
}

// EnrolRequest carries the admin form for a new member.
type EnrolRequest struct {
	Password string
	Name     string
	Photo    []byte
	Filename string
}

// Enrolment is the result of creating a member.
type Enrolment struct {
	Identity  Identity
	Number    int
	NumberStr string
	Email     string
}
