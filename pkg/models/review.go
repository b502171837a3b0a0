package models

import "time"

type Review struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID string    `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	CookerID   string    `gorm:"type:varchar(36);not null;index" json:"cooker_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`

	Customer *Customer `gorm:"-" json:"customer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
