package models

import "time"

// OrderStatus represents the kitchen states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
)

// UserDetails is the customer snapshot embedded in an order
type UserDetails struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Order is keyed by the payment intent id that paid for it
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal        string      `json:"subtotal"`
	Total           string      `json:"total"`
	PaymentMethodID string      `json:"paymentMethodId"`
	PaymentStatus   string      `json:"paymentStatus"`
	Status          OrderStatus `json:"status" gorm:"not null;default:'Pending';index"`
	UserDetails     UserDetails `json:"userDetails" gorm:"embedded;embeddedPrefix:user_"`
	CreatedAt       time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is a snapshot of a cart line, decoupled from the live menu item
type OrderItem struct {
	ID       uint    `json:"-" gorm:"primaryKey"`
	OrderID  string  `json:"-" gorm:"index;not null"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" gorm:"not null"`
	Quantity int     `json:"quantity" gorm:"not null"`
	Image    string  `json:"image"`
}

// PaymentRecord mirrors a successful charge under the paying user
type PaymentRecord struct {
	ID            string    `json:"paymentIntentId" gorm:"primaryKey"`
	UserID        string    `json:"userId" gorm:"index;not null"`
	Subtotal      string    `json:"subtotal"`
	Total         string    `json:"total"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}
