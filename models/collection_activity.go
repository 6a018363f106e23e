package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionActivity is the append-only audit trail of collector actions on a
// case. A promise to pay is an activity with PromiseAmount > 0.
type CollectionActivity struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time       `json:"-"`
	CaseID           uint            `gorm:"index;not null" json:"caseId"`
	Case             *CollectionCase `gorm:"foreignKey:CaseID" json:"-"`
	CollectorID      *uint           `gorm:"index" json:"collectorId"`
	Collector        *User           `gorm:"foreignKey:CollectorID" json:"-"`
	ActivityType     string          `gorm:"size:50;index" json:"activityType"`
	ActivityResult   string          `gorm:"size:50" json:"activityResult"`
	ActivityDatetime time.Time       `gorm:"index;not null" json:"activityDatetime"`
	PromiseAmount    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"promiseAmount"`
	PromiseDate      *time.Time      `json:"promiseDate"`
	Notes            string          `gorm:"type:text" json:"notes"`
}
