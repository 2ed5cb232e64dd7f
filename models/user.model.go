package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the identity that partitions persisted learning state.
type User struct {
	Email string `json:"email"`
}

// Key returns the normalized partition key for the user.
func (u User) Key() string {
	return NormalizeEmail(u.Email)
}

// Account is a registered user with credentials.
type Account struct {
	gorm.Model
	Email     string     `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Password  string     `json:"-" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`
	IsDeleted bool       `json:"-" gorm:"default:false"`
}

// User returns the identity held by the account.
func (a Account) User() User {
	return User{Email: a.Email}
}

// NormalizeEmail trims and lowers an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
