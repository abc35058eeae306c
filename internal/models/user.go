package models

import (
	"time"
)

// Role is the authorization level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleHead  Role = "head"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleHead:
		return true
	}
	return false
}

// Elevated reports whether the role may perform admin operations.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleHead
}

// AuthMethod records how the account authenticates.
type AuthMethod string

const (
	AuthLocal    AuthMethod = "local"
	AuthGoogle   AuthMethod = "google"
	AuthFacebook AuthMethod = "facebook"
	AuthGithub   AuthMethod = "github"
)

// User represents a user in the system
type User struct {
	Base
	Firstname            string     `json:"firstname" gorm:"not null"`
	Lastname             string     `json:"lastname" gorm:"not null"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	Password             string     `json:"-" gorm:"not null"`
	Role                 Role       `json:"role" gorm:"not null;default:'user'"`
	AuthMethod           AuthMethod `json:"authMethod" gorm:"column:auth_method;not null;default:'local'"`
	IsBlocked            bool       `json:"isBlocked" gorm:"column:is_blocked;default:false"`
	PasswordResetToken   *string    `json:"-" gorm:"column:password_reset_token;index"`
	PasswordResetExpires *time.Time `json:"-" gorm:"column:password_reset_expires"`

	// TaskIDs lists tasks this user handles; derived on read.
	TaskIDs []string `json:"tasks" gorm:"-"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
