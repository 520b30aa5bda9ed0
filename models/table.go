package models

import (
	"time"

	"gorm.io/gorm"
)

// Table statuses.
const (
	TableStatusVacant     = "VACANT"
	TableStatusSeated     = "SEATED"
	TableStatusOrdering   = "ORDERING"
	TableStatusServed     = "SERVED"
	TableStatusReadyToPay = "READY_TO_PAY"
	TableStatusCleaning   = "CLEANING"
)

// tableStatusSuccessors fixes which transitions a table may take. Back
// edges (SERVED→ORDERING, READY_TO_PAY→ORDERING) let staff add items or
// undo a premature ready-to-pay without resetting the table; CLEANING is
// reachable from every non-terminal state as an escape hatch.
var tableStatusSuccessors = map[string][]string{
	TableStatusVacant:     {TableStatusSeated, TableStatusCleaning},
	TableStatusSeated:     {TableStatusOrdering, TableStatusVacant, TableStatusCleaning},
	TableStatusOrdering:   {TableStatusServed, TableStatusVacant, TableStatusCleaning},
	TableStatusServed:     {TableStatusReadyToPay, TableStatusOrdering, TableStatusVacant, TableStatusCleaning},
	TableStatusReadyToPay: {TableStatusCleaning, TableStatusVacant, TableStatusOrdering},
	TableStatusCleaning:   {TableStatusVacant},
}

// IsValidTableStatus reports whether s is a known table status.
func IsValidTableStatus(s string) bool {
	_, ok := tableStatusSuccessors[s]
	return ok
}

// TableStatusSuccessors returns a copy of the statuses reachable from s.
func TableStatusSuccessors(s string) []string {
	successors := tableStatusSuccessors[s]
	out := make([]string, len(successors))
	copy(out, successors)
	return out
}

// CanTransitionTableStatus reports whether a table may move from one
// status to another. Same-state transitions are always allowed.
func CanTransitionTableStatus(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range tableStatusSuccessors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Table is a physical seating unit. Removal tombstones the row via
// DeletedAt so historical orders referencing the table stay valid; every
// normal query sees active rows only.
type Table struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StoreID   uint           `gorm:"index;not null" json:"store_id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Status    string         `gorm:"type:varchar(20);not null;default:'VACANT'" json:"status"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
