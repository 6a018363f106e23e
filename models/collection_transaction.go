package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionTransaction is a branch-level collection posting used by the
// comparison and trend reports. Append-mostly; status may move to completed.
type CollectionTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
	BranchID        uint            `gorm:"index;not null" json:"branchId"`
	Branch          *Branch         `gorm:"foreignKey:BranchID" json:"-"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transactionDate"`
	CustomerID      string          `gorm:"size:20;index" json:"customerId"`
	CustomerName    string          `gorm:"size:255" json:"customerName"`
	AccountNumber   string          `gorm:"size:30" json:"accountNumber"`
	TransactionType string          `gorm:"size:30" json:"transactionType"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"size:30" json:"paymentMethod"`
	CollectorID     *uint           `gorm:"index" json:"collectorId"`
	Collector       *User           `gorm:"foreignKey:CollectorID" json:"-"`
	Status          string          `gorm:"size:20;index;not null;default:completed" json:"status"`
	ReferenceNumber string          `gorm:"size:50" json:"referenceNumber"`
}
