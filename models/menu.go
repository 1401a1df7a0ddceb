package models

import "time"

type Nutrition struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Protein  float64 `json:"protein"`
}

type MenuItem struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"index"`
	Ingredients []string  `json:"ingredients,omitempty" gorm:"serializer:json"`
	Nutrition   Nutrition `json:"nutrition" gorm:"embedded;embeddedPrefix:nutrition_"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InquiryPending is the only status a stored inquiry carries; replied ones move tables
const InquiryPending = "pending"

type Inquiry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason"`
	Datetime  string    `json:"datetime,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status" gorm:"default:'pending'"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

type RespondedInquiry struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Reason       string    `json:"reason"`
	Datetime     string    `json:"datetime,omitempty"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ReplySubject string    `json:"replySubject"`
	ReplyMessage string    `json:"replyMessage"`
	RepliedAt    time.Time `json:"repliedAt" gorm:"index"`
}
