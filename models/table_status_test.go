package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []string{
	TableStatusVacant,
	TableStatusSeated,
	TableStatusOrdering,
	TableStatusServed,
	TableStatusReadyToPay,
	TableStatusCleaning,
}

func TestTableStatusMatrix(t *testing.T) {
	allowed := map[string][]string{
		TableStatusVacant:     {TableStatusSeated, TableStatusCleaning},
		TableStatusSeated:     {TableStatusOrdering, TableStatusVacant, TableStatusCleaning},
		TableStatusOrdering:   {TableStatusServed, TableStatusVacant, TableStatusCleaning},
		TableStatusServed:     {TableStatusReadyToPay, TableStatusOrdering, TableStatusVacant, TableStatusCleaning},
		TableStatusReadyToPay: {TableStatusCleaning, TableStatusVacant, TableStatusOrdering},
		TableStatusCleaning:   {TableStatusVacant},
	}

	for _, from := range allStatuses {
		allowedSet := map[string]bool{from: true} // same-state is always allowed
		for _, to := range allowed[from] {
			allowedSet[to] = true
		}
		for _, to := range allStatuses {
			got := CanTransitionTableStatus(from, to)
			assert.Equalf(t, allowedSet[to], got, "transition %s -> %s", from, to)
		}
	}
}

func TestTableStatusSuccessorsIsCopy(t *testing.T) {
	s := TableStatusSuccessors(TableStatusVacant)
	assert.Equal(t, []string{TableStatusSeated, TableStatusCleaning}, s)

	s[0] = "mutated"
	assert.Equal(t, []string{TableStatusSeated, TableStatusCleaning}, TableStatusSuccessors(TableStatusVacant))
}

func TestIsValidTableStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, IsValidTableStatus(s))
	}
	assert.False(t, IsValidTableStatus("DIRTY"))
	assert.False(t, IsValidTableStatus("vacant"))
	assert.False(t, IsValidTableStatus(""))
}
