package models

import "time"

const (
	SessionTypeTable  = "table"
	SessionTypeManual = "manual"

	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// ActiveSession is the live ordering context at a table, or an unbound
// quick-sale context when TableID is nil. The secret is issued exactly
// once at creation; the json:"-" tag keeps it out of every read response,
// the creation handler returns it explicitly.
type ActiveSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StoreID     uint       `gorm:"index;not null" json:"store_id"`
	TableID     *uint      `gorm:"index" json:"table_id,omitempty"`
	Table       *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	SessionType string     `gorm:"type:varchar(20);not null" json:"session_type"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Secret      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	GuestCount  int        `gorm:"not null;default:1" json:"guest_count"`
	GuestName   *string    `gorm:"type:varchar(255)" json:"guest_name,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}
