package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CookerID    string          `gorm:"type:varchar(36);not null;index" json:"cooker_id"`
	Title       string          `gorm:"type:varchar(120);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string          `gorm:"type:varchar(255)" json:"image_url"`
	Category    string          `gorm:"type:varchar(50);index" json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
