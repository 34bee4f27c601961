// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

// DefaultAvatar is the sentinel avatar filename assigned to new accounts.
const DefaultAvatar = "default.jpg"

// User represents a registered account in the Inkwell application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:20;unique;not null" json:"username"`
	Email     string    `gorm:"size:120;unique;not null" json:"email"`
	Image     string    `gorm:"size:40;not null;default:'default.jpg'" json:"image"`
	Password  string    `gorm:"size:60;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// PrincipalID returns the identifier under which this user is tracked in a session.
func (u *User) PrincipalID() uint {
	return u.ID
}

// IsAuthenticated reports whether this user represents a logged-in account.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != 0
}

func (u *User) String() string {
	return fmt.Sprintf("User(%q, %q, %q)", u.Username, u.Email, u.Image)
}
