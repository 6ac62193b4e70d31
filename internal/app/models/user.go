package models

import "time"

// RoleType defines the account role
type RoleType string

const (
	RoleAdmin     RoleType = "ADMIN"
	RoleSecretary RoleType = "SECRETARY"
	RoleTeacher   RoleType = "TEACHER"
	RoleParent    RoleType = "PARENT"
	RoleStudent   RoleType = "STUDENT"
)

// Valid reports whether the role is one of the known role constants.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to school staff. Staff roles may
// initiate conversations and change conversation status.
func (r RoleType) IsStaff() bool {
	return r == RoleAdmin || r == RoleSecretary || r == RoleTeacher
}

// User defines the account model based on the 'users' table.
// Accounts are created inactive and become active once a password is set
// through a one-time activation token.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	SchoolID    int64      `json:"schoolId" db:"school_id" example:"1"`
	Email       string     `json:"email" db:"email" example:"parent@example.com"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, empty until activation
	FirstName   string     `json:"firstName" db:"first_name" example:"Ayse"`
	LastName    string     `json:"lastName" db:"last_name" example:"Yilmaz"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"PARENT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// ActivationToken is a one-time, time-limited token used to set the first
// password on an inactive account.
type ActivationToken struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Token     string     `json:"token" db:"token"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
