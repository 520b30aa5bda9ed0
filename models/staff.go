package models

import "time"

// Store roles, from most to least privileged.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleServer  = "server"
	RoleCashier = "cashier"
)

// StoreStaff grants a user a role within one store.
type StoreStaff struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoreID   uint      `gorm:"uniqueIndex:idx_store_user;not null" json:"store_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_store_user;not null" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidRole reports whether role is one of the known store roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleServer, RoleCashier:
		return true
	}
	return false
}
