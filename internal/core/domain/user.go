package domain

import "time"

// UserRole is the role of an authenticated desktop-client account.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// ParseUserRole maps a wire string to a UserRole, defaulting to USER.
func ParseUserRole(s string) UserRole {
	if UserRole(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// AppUser models a login account. The password is only ever stored as a
// bcrypt hash; the Salt column exists for schema compatibility with older
// clients (bcrypt embeds the salt in the hash).
type AppUser struct {
	ID           int64     `json:"userId" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
