package models

import (
	"strings"
	"time"
)

// Roles recognized by the API. Anything else is rejected at registration.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleCollector = "collector"
	RoleViewer    = "viewer"
)

// User model. Accounts are never hard-deleted; IsActive=false locks them out.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash only
	FirstName string    `gorm:"size:100;not null" json:"firstName"`
	LastName  string    `gorm:"size:100;not null" json:"lastName"`
	Role      string    `gorm:"size:20;not null;default:viewer" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
}

// FullName joins first and last name, trimming when either is empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCollector, RoleViewer:
		return true
	}
	return false
}
