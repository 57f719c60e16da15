package domain

import "time"

// UserRole separates ticket requesters from support agents.
type UserRole string

const (
	UserRoleRequester UserRole = "REQUESTER"
	UserRoleAgent     UserRole = "AGENT"
)

// User models an account that can author tickets or, for agents, work them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Gender       *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAgent reports whether the user holds the AGENT role.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == UserRoleAgent
}
