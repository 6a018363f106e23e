package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Case statuses. "Active" and "Closed" are API-level aliases, not stored values.
const (
	CaseStatusNew        = "new"
	CaseStatusInProgress = "in_progress"
	CaseStatusResolved   = "resolved"
	CaseStatusClosed     = "closed"
	CaseStatusLegal      = "legal"
	CaseStatusWrittenOff = "written_off"
)

// CollectionCase links a delinquent customer to exactly one finance account and
// aggregates the collector's activity trail.
type CollectionCase struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"-"`
	CustomerID          uint            `gorm:"index;not null" json:"customerId"`
	Customer            *Customer       `gorm:"foreignKey:CustomerID" json:"-"`
	AccountID           uint            `gorm:"uniqueIndex;not null" json:"accountId"`
	Account             *FinanceAccount `gorm:"foreignKey:AccountID" json:"-"`
	Status              string          `gorm:"size:20;index;not null;default:new" json:"status"`
	Priority            string          `gorm:"size:20" json:"priority"`
	TotalOutstanding    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"totalOutstanding"`
	AssignedCollectorID *uint           `gorm:"index" json:"assignedCollectorId"`
	AssignedCollector   *User           `gorm:"foreignKey:AssignedCollectorID" json:"-"`
	LastPaymentDate     *time.Time      `json:"lastPaymentDate"`
	LastContactDate     *time.Time      `json:"lastContactDate"`
	NextActionDate      *time.Time      `json:"nextActionDate"`
}

// CaseStatusAlias expands the UI-facing status filters into stored statuses.
// Unknown values fall through as a single lowercased status.
func CaseStatusAlias(status string) []string {
	switch status {
	case "Active":
		return []string{CaseStatusNew, CaseStatusInProgress}
	case "Closed":
		return []string{CaseStatusResolved, CaseStatusClosed}
	}
	return nil
}
