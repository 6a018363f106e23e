package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTransaction is an account-level payment posting; the collection
// dashboard metrics read these rather than branch transactions.
type PaymentTransaction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time       `json:"-"`
	UpdatedAt         time.Time       `json:"-"`
	AccountID         uint            `gorm:"index;not null" json:"accountId"`
	Account           *FinanceAccount `gorm:"foreignKey:AccountID" json:"-"`
	PaymentDate       time.Time       `gorm:"index;not null" json:"paymentDate"`
	PaymentAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"paymentAmount"`
	PaymentMethod     string          `gorm:"size:30" json:"paymentMethod"`
	TransactionStatus string          `gorm:"size:20;index;not null;default:completed" json:"transactionStatus"`
	ReceiptNumber     string          `gorm:"size:50" json:"receiptNumber"`
	CollectedByID     *uint           `gorm:"index" json:"collectedById"`
	CollectedBy       *User           `gorm:"foreignKey:CollectedByID" json:"-"`
}
