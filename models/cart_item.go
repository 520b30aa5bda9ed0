package models

import "time"

// CartItem is one line of a session's cart. Items carry their own name
// and price snapshot so quick-sale sessions work without a menu lookup.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index;not null" json:"session_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Note      *string   `gorm:"type:varchar(500)" json:"note,omitempty"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
