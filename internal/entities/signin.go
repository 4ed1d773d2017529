package entities

import "time"

type SignInRole string

const (
	RoleStaff  SignInRole = "Staff"
	RoleReader SignInRole = "Reader"
)

func (r SignInRole) Valid() bool {
	return r == RoleStaff || r == RoleReader
}

// SignInRecord is one attendance event from the sign-in log. Records are
// append-only and are not stored in the relational database.
type SignInRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      SignInRole `json:"role"`
	Timestamp time.Time  `json:"timestamp"`
}
