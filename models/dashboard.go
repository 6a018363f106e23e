package models

import "time"

// UserDashboard is owned by exactly one user. At most one dashboard per user
// may have IsDefault=true; the handler clears siblings inside the same
// transaction when a default is set.
type UserDashboard struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"dashboardName"`
	LayoutConfig JSON      `gorm:"type:jsonb" json:"layoutConfig"`
	IsDefault    bool      `gorm:"not null;default:false" json:"isDefault"`
}

// DashboardWidget must not outlive its dashboard; deletes cascade through the
// handler, not the schema.
type DashboardWidget struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DashboardID uint           `gorm:"index;not null" json:"dashboardId"`
	Dashboard   *UserDashboard `gorm:"foreignKey:DashboardID" json:"-"`
	WidgetType  string         `gorm:"size:50;not null" json:"widgetType"`
	WidgetTitle string         `gorm:"size:255;not null" json:"widgetTitle"`
	PositionX   int            `gorm:"not null;default:0" json:"positionX"`
	PositionY   int            `gorm:"not null;default:0" json:"positionY"`
	Width       int            `gorm:"not null;default:3" json:"width"`
	Height      int            `gorm:"not null;default:2" json:"height"`
	Config      JSON           `gorm:"type:jsonb" json:"config"`
	IsVisible   bool           `gorm:"not null;default:true" json:"isVisible"`
}
