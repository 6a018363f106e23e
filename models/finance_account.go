package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceAccount mirrors the servicing system's account snapshot. DPD and the
// bucket label are recalculated outside this API; we only read them.
type FinanceAccount struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time       `json:"-"`
	UpdatedAt          time.Time       `json:"-"`
	CustomerID         uint            `gorm:"index;not null" json:"customerId"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID" json:"-"`
	ProductType        string          `gorm:"size:50" json:"productType"`
	OutstandingAmount  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"outstandingAmount"`
	MonthlyInstallment decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"monthlyInstallment"`
	DPD                int             `gorm:"column:dpd;not null;default:0" json:"dpd"`
	Bucket             string          `gorm:"size:20" json:"bucket"`
	BranchCode         string          `gorm:"size:20;index" json:"branchCode"`
	AccountStatus      string          `gorm:"size:20;index" json:"accountStatus"`
}
