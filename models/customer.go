package models

import (
	"strings"
	"time"
)

// Customer carries both English and Arabic name variants; search matches either.
type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	FirstName    string    `gorm:"size:100" json:"firstName"`
	LastName     string    `gorm:"size:100" json:"lastName"`
	FirstNameAr  string    `gorm:"size:100" json:"firstNameAr"`
	LastNameAr   string    `gorm:"size:100" json:"lastNameAr"`
	NationalID   string    `gorm:"size:20;index" json:"nationalId"`
	RiskCategory string    `gorm:"size:20" json:"riskCategory"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Customer) FullNameAr() string {
	return strings.TrimSpace(c.FirstNameAr + " " + c.LastNameAr)
}
