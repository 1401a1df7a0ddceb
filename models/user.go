package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'user'"`
	PhoneNumber  string    `json:"phoneNumber"`
	Points       float64   `json:"points" gorm:"default:0"` // loyalty points
	PhotoURL     string    `json:"photoURL"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Notification is a per-user message created when one of their orders changes status
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	OrderID   string    `json:"orderId"`
	Message   string    `json:"message" gorm:"not null"`
	Timestamp time.Time `json:"timestamp"`
}

// CardDetails holds the display metadata of the card last used by a user
type CardDetails struct {
	UserID          string    `json:"userId" gorm:"primaryKey"`
	PaymentMethodID string    `json:"paymentMethodId"`
	Brand           string    `json:"brand"`
	Last4           string    `json:"last4"`
	LastUsed        time.Time `json:"lastUsed"`
}
