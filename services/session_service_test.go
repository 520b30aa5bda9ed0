package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
)

func TestStartSessionOnVacantTable(t *testing.T) {
	sessionSvc, tableSvc, hub, store := newTestSessionService(t)

	table, err := tableSvc.Create(store.ID, "T-1")
	require.NoError(t, err)

	session, err := sessionSvc.Start(store.ID, StartInput{TableID: &table.ID, GuestCount: 3})
	require.NoError(t, err)
	assert.Equal(t, models.SessionTypeTable, session.SessionType)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.NotEmpty(t, session.Secret)
	assert.Equal(t, 3, session.GuestCount)

	// The table moved to SEATED in the same transaction.
	seated, err := tableSvc.Get(store.ID, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusSeated, seated.Status)

	assert.Contains(t, hub.eventNames(), realtime.EventSessionStarted)
	assert.Contains(t, hub.eventNames(), realtime.EventTableStatusChanged)
}

func TestStartSessionRejectsOccupiedTable(t *testing.T) {
	sessionSvc, tableSvc, _, store := newTestSessionService(t)

	table, err := tableSvc.Create(store.ID, "T-1")
	require.NoError(t, err)

	_, err = sessionSvc.Start(store.ID, StartInput{TableID: &table.ID})
	require.NoError(t, err)

	_, err = sessionSvc.Start(store.ID, StartInput{TableID: &table.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestStartSessionRejectsNonVacantTable(t *testing.T) {
	sessionSvc, tableSvc, _, store := newTestSessionService(t)

	table, err := tableSvc.Create(store.ID, "T-1")
	require.NoError(t, err)
	_, err = tableSvc.UpdateStatus(store.ID, table.ID, models.TableStatusCleaning)
	require.NoError(t, err)

	_, err = sessionSvc.Start(store.ID, StartInput{TableID: &table.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestStartQuickSaleSession(t *testing.T) {
	sessionSvc, _, _, store := newTestSessionService(t)

	session, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)
	assert.Equal(t, models.SessionTypeManual, session.SessionType)
	assert.Nil(t, session.TableID)
	assert.Equal(t, 1, session.GuestCount)
	assert.NotEmpty(t, session.Secret)
}

func TestSessionSecretsAreUnique(t *testing.T) {
	sessionSvc, _, _, store := newTestSessionService(t)

	a, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)
	b, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Secret, b.Secret)
}

func TestCloseSessionMovesTableToCleaning(t *testing.T) {
	sessionSvc, tableSvc, hub, store := newTestSessionService(t)

	table, err := tableSvc.Create(store.ID, "T-1")
	require.NoError(t, err)
	session, err := sessionSvc.Start(store.ID, StartInput{TableID: &table.ID})
	require.NoError(t, err)

	closed, err := sessionSvc.Close(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	after, err := tableSvc.Get(store.ID, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusCleaning, after.Status)
	assert.Contains(t, hub.eventNames(), realtime.EventSessionClosed)

	// Closing twice conflicts.
	_, err = sessionSvc.Close(session.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateGuests(t *testing.T) {
	sessionSvc, _, _, store := newTestSessionService(t)

	session, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)

	count := 5
	name := "Aye Chan"
	updated, err := sessionSvc.UpdateGuests(session.ID, &count, &name)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.GuestCount)
	assert.Equal(t, "Aye Chan", *updated.GuestName)

	bad := 0
	_, err = sessionSvc.UpdateGuests(session.ID, &bad, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCartLifecycle(t *testing.T) {
	sessionSvc, _, hub, store := newTestSessionService(t)

	session, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)

	item, err := sessionSvc.AddCartItem(session.ID, CartItemInput{Name: "Mohinga", Quantity: 2, UnitPrice: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	item, err = sessionSvc.UpdateCartItem(session.ID, item.ID, CartItemInput{Name: "Mohinga", Quantity: 3, UnitPrice: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	items, err := sessionSvc.ListCartItems(session.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, sessionSvc.RemoveCartItem(session.ID, item.ID))
	items, err = sessionSvc.ListCartItems(session.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Contains(t, hub.eventNames(), realtime.EventCartUpdated)
}

func TestCartRejectedOnClosedSession(t *testing.T) {
	sessionSvc, _, _, store := newTestSessionService(t)

	session, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)
	_, err = sessionSvc.Close(session.ID)
	require.NoError(t, err)

	_, err = sessionSvc.AddCartItem(session.ID, CartItemInput{Name: "Tea", Quantity: 1})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRemoveMissingCartItem(t *testing.T) {
	sessionSvc, _, _, store := newTestSessionService(t)

	session, err := sessionSvc.Start(store.ID, StartInput{})
	require.NoError(t, err)

	err = sessionSvc.RemoveCartItem(session.ID, 12345)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
