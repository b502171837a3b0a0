package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusCooking        OrderStatus = "cooking"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusCooking, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID string          `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	CookerID   string          `gorm:"type:varchar(36);not null;index" json:"cooker_id"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'placed'" json:"status"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID    string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	MenuItemID string          `gorm:"type:varchar(36);not null" json:"menu_item_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"` // snapshot at order time

	MenuItem *MenuItem `gorm:"-" json:"menu_item,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Delivery struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"order_id"`
	CourierID string    `gorm:"type:varchar(36)" json:"courier_id"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	Status    string    `gorm:"type:varchar(20)" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (Delivery) TableName() string {
	return "deliveries"
}

type Payment struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Token     string          `gorm:"type:varchar(100)" json:"token"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Status    string          `gorm:"type:varchar(20)" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
