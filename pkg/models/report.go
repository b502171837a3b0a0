package models

import "time"

type ReportTarget string

const (
	TargetUser     ReportTarget = "user"
	TargetCooker   ReportTarget = "cooker"
	TargetMenuItem ReportTarget = "menu_item"
	TargetOrder    ReportTarget = "order"
	TargetReview   ReportTarget = "review"
)

func (t ReportTarget) Valid() bool {
	switch t {
	case TargetUser, TargetCooker, TargetMenuItem, TargetOrder, TargetReview:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportReviewing ReportStatus = "reviewing"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportOpen, ReportReviewing, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Report points at any entity through TargetType/TargetID.
type Report struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReporterID string       `gorm:"type:varchar(36);not null;index" json:"reporter_id"`
	TargetType ReportTarget `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetID   string       `gorm:"type:varchar(36);not null" json:"target_id"`
	Reason     string       `gorm:"type:varchar(255);not null" json:"reason"`
	Details    string       `gorm:"type:text" json:"details,omitempty"`
	OrderID    string       `gorm:"type:varchar(36)" json:"order_id,omitempty"`
	Status     ReportStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`

	Reporter *User `gorm:"-" json:"reporter,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
