package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/router"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

var testJWTSecret = []byte("controllers-test-secret")

// setupTestDB opens a test-scoped in-memory sqlite and migrates the full
// schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctl-%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreStaff{},
		&models.Subscription{},
		&models.Table{},
		&models.ActiveSession{},
		&models.CartItem{},
	))
	return db
}

func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return router.SetupRouter(router.Options{
		DB:         db,
		Log:        utils.NewTestLogger(),
		JWTSecret:  testJWTSecret,
		CORSOrigin: "*",
	})
}

// seedStaff creates a user with the given role in a fresh store and
// returns the store and a valid identity token.
func seedStaff(t *testing.T, db *gorm.DB, role string) (models.Store, string) {
	t.Helper()
	store := models.Store{Name: "Food House", Slug: fmt.Sprintf("fh-%s-%s", role, t.Name())}
	require.NoError(t, db.Create(&store).Error)

	user := models.User{Name: "Staff", Email: fmt.Sprintf("%s-%s@example.com", role, t.Name()), Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.StoreStaff{StoreID: store.ID, UserID: user.ID, Role: role}).Error)

	token, err := utils.GenerateToken(testJWTSecret, user.ID)
	require.NoError(t, err)
	return store, token
}

// doJSON performs a request with an optional body, bearer token and
// session secret, returning the recorder.
func doJSON(t *testing.T, r *gin.Engine, method, url string, body interface{}, token, secret string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if secret != "" {
		req.Header.Set("X-Session-Secret", secret)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
