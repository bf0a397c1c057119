package models

import (
	"time"
)

// Role is the access level of an account. Levels are ordered: an admin can do
// everything a reviewer can, a reviewer everything a member can.
type Role string

const (
	RoleMember   Role = "member"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// ValidRoles defines allowed account roles
var ValidRoles = map[Role]bool{
	RoleMember:   true,
	RoleReviewer: true,
	RoleAdmin:    true,
}

// CanReview reports whether the role grants access to other users' private
// comments. Admin implies reviewer.
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// IsAdmin reports whether the role grants account administration rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Account represents one registered user of the application
type Account struct {
	Email     string    `json:"email" db:"email"`
	SafeEmail string    `json:"safe_email" db:"safe_email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsReviewer reports effective reviewer privilege (admin counts).
func (a *Account) IsReviewer() bool {
	return a.Role.CanReview()
}

// IsAdmin reports admin privilege.
func (a *Account) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// AccountResponse is the API representation of an account. Role flags are
// exposed as booleans for callers that only care about privileges.
type AccountResponse struct {
	Email      string `json:"email"`
	SafeEmail  string `json:"safe_email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
	IsReviewer bool   `json:"is_reviewer"`
	IsAdmin    bool   `json:"is_admin"`
}

// ToResponse converts an account to its API representation
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		Email:      a.Email,
		SafeEmail:  a.SafeEmail,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		IsReviewer: a.IsReviewer(),
		IsAdmin:    a.IsAdmin(),
	}
}
