package models

import "time"

// DefaultTableLimit applies to stores without a subscription row (free tier).
const DefaultTableLimit = 10

type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StoreID    uint      `gorm:"uniqueIndex;not null" json:"store_id"`
	Tier       string    `gorm:"type:varchar(50);not null;default:'free'" json:"tier"`
	TableLimit int       `gorm:"not null" json:"table_limit"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
