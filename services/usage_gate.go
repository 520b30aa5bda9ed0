package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
)

// ResourceTable is the only quota-gated resource in this service.
const ResourceTable = "table"

// UsageGate is the admission-control hook consulted before creating
// quota-gated resources. Implementations cache usage counts; the cache
// must be invalidated after any create or delete that changes the count.
type UsageGate interface {
	CheckQuota(storeID uint, resource string) error
	InvalidateUsage(storeID uint)
}

// tableUsageGate enforces the subscription table limit with a cached
// active-table count per store.
type tableUsageGate struct {
	db *gorm.DB

	mu     sync.RWMutex
	counts map[uint]int64
}

func NewUsageGate(db *gorm.DB) UsageGate {
	return &tableUsageGate{
		db:     db,
		counts: make(map[uint]int64),
	}
}

func (g *tableUsageGate) CheckQuota(storeID uint, resource string) error {
	if resource != ResourceTable {
		return nil
	}

	limit, err := g.tableLimit(storeID)
	if err != nil {
		return err
	}
	count, err := g.activeTableCount(storeID)
	if err != nil {
		return err
	}
	if count >= int64(limit) {
		return apperr.Conflict("table limit reached (%d); upgrade the store subscription to add more", limit)
	}
	return nil
}

func (g *tableUsageGate) InvalidateUsage(storeID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.counts, storeID)
}

func (g *tableUsageGate) tableLimit(storeID uint) (int, error) {
	var sub models.Subscription
	err := g.db.Where("store_id = ?", storeID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultTableLimit, nil
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return sub.TableLimit, nil
}

func (g *tableUsageGate) activeTableCount(storeID uint) (int64, error) {
	g.mu.RLock()
	count, ok := g.counts[storeID]
	g.mu.RUnlock()
	if ok {
		return count, nil
	}

	if err := g.db.Model(&models.Table{}).Where("store_id = ?", storeID).Count(&count).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	g.mu.Lock()
	g.counts[storeID] = count
	g.mu.Unlock()
	return count, nil
}
