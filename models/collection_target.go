package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionTarget holds one target amount per branch per calendar month.
// The composite unique index enforces the one-row-per-period invariant.
type CollectionTarget struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
	BranchID     uint            `gorm:"not null;uniqueIndex:idx_target_branch_period" json:"branchId"`
	Branch       *Branch         `gorm:"foreignKey:BranchID" json:"-"`
	TargetMonth  int             `gorm:"not null;uniqueIndex:idx_target_branch_period" json:"targetMonth"`
	TargetYear   int             `gorm:"not null;uniqueIndex:idx_target_branch_period" json:"targetYear"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"targetAmount"`
	CreatedByID  *uint           `json:"createdById"`
}
