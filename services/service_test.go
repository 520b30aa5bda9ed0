package services

import (
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// newTestDB opens a test-scoped in-memory database. The shared-cache DSN
// keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreStaff{},
		&models.Subscription{},
		&models.Table{},
		&models.ActiveSession{},
		&models.CartItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedStore(t *testing.T, db *gorm.DB) models.Store {
	t.Helper()
	store := models.Store{Name: "Test Store", Slug: fmt.Sprintf("test-%s", t.Name())}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return store
}

// stubHub records published events instead of writing to sockets.
type stubHub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (h *stubHub) Publish(storeID uint, event realtime.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *stubHub) eventNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.events))
	for i, e := range h.events {
		names[i] = e.Event
	}
	return names
}

func newTestTableService(t *testing.T) (*TableService, *stubHub, models.Store) {
	t.Helper()
	db := newTestDB(t)
	store := seedStore(t, db)
	hub := &stubHub{}
	svc := NewTableService(db, utils.NewTestLogger(), NewUsageGate(db), hub)
	return svc, hub, store
}

func newTestSessionService(t *testing.T) (*SessionService, *TableService, *stubHub, models.Store) {
	t.Helper()
	db := newTestDB(t)
	store := seedStore(t, db)
	hub := &stubHub{}
	tableSvc := NewTableService(db, utils.NewTestLogger(), NewUsageGate(db), hub)
	sessionSvc := NewSessionService(db, utils.NewTestLogger(), hub)
	return sessionSvc, tableSvc, hub, store
}
