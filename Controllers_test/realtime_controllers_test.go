package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
)

func TestObserveRejectsUnauthenticatedHandshake(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	store, _ := seedStaff(t, db, models.RoleServer)

	// No credential: the handshake is refused before any upgrade, so no
	// subscription is ever created.
	w := doJSON(t, r, "GET", fmt.Sprintf("/ws/stores/%d", store.ID), nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A bogus session secret is Forbidden.
	w = doJSON(t, r, "GET", fmt.Sprintf("/ws/stores/%d?session_secret=wrong", store.ID), nil, "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestObserveAcceptsValidSecretQueryParam(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	store, token := seedStaff(t, db, models.RoleServer)

	w := doJSON(t, r, "POST", fmt.Sprintf("/stores/%d/sessions", store.ID),
		map[string]interface{}{}, token, "")
	require.Equal(t, http.StatusCreated, w.Code)
	secret := decodeBody(t, w)["data"].(map[string]interface{})["session_secret"].(string)

	// Credential resolution passes; the request then fails at the
	// upgrade stage because the recorder is not a websocket client,
	// which proves the handshake got past authentication.
	w = doJSON(t, r, "GET", fmt.Sprintf("/ws/stores/%d?session_secret=%s", store.ID, secret), nil, "", "")
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
	assert.NotEqual(t, http.StatusForbidden, w.Code)
}
