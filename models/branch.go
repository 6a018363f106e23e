package models

import "time"

// Branch is soft-deleted via IsActive; rows are never removed.
type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	Code      string    `gorm:"size:20;not null;uniqueIndex" json:"branchCode"`
	Name      string    `gorm:"size:255;not null" json:"branchName"`
	Region    string    `gorm:"size:100" json:"region"`
	City      string    `gorm:"size:100" json:"city"`
	ManagerID *uint     `gorm:"index" json:"managerId"`
	Manager   *User     `gorm:"foreignKey:ManagerID" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
}
