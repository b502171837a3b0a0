package models

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleCooker   Role = "cooker"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCooker, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	AvatarURL string    `gorm:"type:varchar(255)" json:"avatar_url"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Profile is the public slice of a user that aggregates attach to orders and reviews.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Phone: u.Phone}
}

type Credential struct {
	UserID            string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	PasswordHash      string    `gorm:"type:varchar(100);not null" json:"password_hash"`
	EmailConfirmed    bool      `gorm:"not null;default:false" json:"email_confirmed"`
	ConfirmationToken string    `gorm:"type:varchar(36);index" json:"confirmation_token"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Credential) TableName() string {
	return "credentials"
}

type Customer struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID  string `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Address string `gorm:"type:varchar(255)" json:"address"`

	User *User `gorm:"-" json:"user,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// Cooker holds kitchen metadata; name and avatar come from the joined user.
type Cooker struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	KitchenName string `gorm:"type:varchar(100);not null;index" json:"kitchen_name"`

	User *User `gorm:"-" json:"user,omitempty"`
}

func (Cooker) TableName() string {
	return "cookers"
}
