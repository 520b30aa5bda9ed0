package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// MaxSyncBatch bounds a reconciliation batch to keep the transaction
// duration reasonable.
const MaxSyncBatch = 100

// TableSpec is one desired row of a reconciliation batch: an ID plus
// name means "rename this table", a bare name means "create".
type TableSpec struct {
	ID   *uint  `json:"id"`
	Name string `json:"name" binding:"required"`
}

// TableService owns every table mutation. All multi-step writes run
// inside one transaction and re-validate state from freshly read rows.
type TableService struct {
	DB   *gorm.DB
	Log  *logrus.Logger
	Gate UsageGate
	Hub  realtime.Broadcaster
}

func NewTableService(db *gorm.DB, log *logrus.Logger, gate UsageGate, hub realtime.Broadcaster) *TableService {
	return &TableService{DB: db, Log: log, Gate: gate, Hub: hub}
}

// Create adds one table, consulting the usage gate first.
func (s *TableService) Create(storeID uint, name string) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("table name must not be empty")
	}

	if err := s.Gate.CheckQuota(storeID, ResourceTable); err != nil {
		return nil, err
	}

	table := models.Table{
		StoreID: storeID,
		Name:    name,
		Status:  models.TableStatusVacant,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureStoreExists(tx, storeID); err != nil {
			return err
		}
		if err := ensureNameFree(tx, storeID, name, 0); err != nil {
			return err
		}
		if err := tx.Create(&table).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Gate.InvalidateUsage(storeID)
	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTableCreated, Data: table})
	s.Log.Infof("table %q created in store %d", table.Name, storeID)
	return &table, nil
}

// List returns the store's active tables in natural name order.
func (s *TableService) List(storeID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := s.DB.Where("store_id = ?", storeID).Find(&tables).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	sortTables(tables)
	return tables, nil
}

// Get returns one active table of the store.
func (s *TableService) Get(storeID, tableID uint) (*models.Table, error) {
	return findStoreTable(s.DB, storeID, tableID)
}

// Rename changes a table's display name, re-checking uniqueness among
// the store's active tables inside the transaction.
func (s *TableService) Rename(storeID, tableID uint, name string) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("table name must not be empty")
	}

	var table *models.Table
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		table, err = findStoreTable(tx, storeID, tableID)
		if err != nil {
			return err
		}
		if err := ensureNameFree(tx, storeID, name, table.ID); err != nil {
			return err
		}
		table.Name = name
		if err := tx.Save(table).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTableUpdated, Data: table})
	return table, nil
}

// SoftDelete tombstones a table. The row is never physically removed so
// historical orders keep a valid reference. Deletion is blocked while
// the table has an active session.
func (s *TableService) SoftDelete(storeID, tableID uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		table, err := findStoreTable(tx, storeID, tableID)
		if err != nil {
			return err
		}
		busy, err := hasActiveSession(tx, table.ID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("table %q has an active session and cannot be deleted", table.Name)
		}
		if err := tx.Delete(table).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Gate.InvalidateUsage(storeID)
	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTableDeleted, Data: map[string]uint{"id": tableID}})
	s.Log.Infof("table %d soft-deleted in store %d", tableID, storeID)
	return nil
}

// UpdateStatus applies one state-machine transition. A same-state
// request is an idempotent no-op write; any other target must be in the
// current status's successor set, and a rejection names that set so the
// caller can self-correct.
func (s *TableService) UpdateStatus(storeID, tableID uint, target string) (*models.Table, error) {
	if !models.IsValidTableStatus(target) {
		return nil, apperr.Validation("unknown table status %q", target)
	}

	var table *models.Table
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		table, err = findStoreTable(tx, storeID, tableID)
		if err != nil {
			return err
		}
		if !models.CanTransitionTableStatus(table.Status, target) {
			return apperr.Validation("cannot transition table from %s to %s", table.Status, target).
				WithDetails(map[string]interface{}{
					"current_status":   table.Status,
					"allowed_statuses": models.TableStatusSuccessors(table.Status),
				})
		}
		// A table is VACANT only while no active session references it;
		// the session must be closed before the table can be freed.
		if target == models.TableStatusVacant && table.Status != models.TableStatusVacant {
			busy, err := hasActiveSession(tx, table.ID)
			if err != nil {
				return err
			}
			if busy {
				return apperr.Conflict("table %q has an active session and cannot be set to %s", table.Name, models.TableStatusVacant)
			}
		}
		table.Status = target
		if err := tx.Save(table).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTableStatusChanged, Data: table})
	return table, nil
}

// Sync reconciles the store's table layout against a desired list: rows
// carrying a known ID are renamed, rows without one are created, and
// active tables absent from the list are tombstoned in one bulk update.
// The whole batch commits or nothing does; re-running a previous run's
// output is a no-op.
func (s *TableService) Sync(storeID uint, desired []TableSpec) ([]models.Table, error) {
	if len(desired) > MaxSyncBatch {
		return nil, apperr.Validation("batch too large: %d rows (max %d)", len(desired), MaxSyncBatch)
	}
	if err := validateSyncNames(desired); err != nil {
		return nil, err
	}

	var final []models.Table
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// A large batch performs many sequential writes; give row
		// locks more room than the default before the engine gives up.
		if tx.Dialector.Name() == "mysql" {
			tx.Exec("SET SESSION innodb_lock_wait_timeout = 30")
		}

		if err := ensureStoreExists(tx, storeID); err != nil {
			return err
		}

		var current []models.Table
		if err := tx.Where("store_id = ?", storeID).Find(&current).Error; err != nil {
			return apperr.Internal(err)
		}

		currentByID := make(map[uint]*models.Table, len(current))
		nameToID := make(map[string]uint, len(current))
		for i := range current {
			currentByID[current[i].ID] = &current[i]
			nameToID[current[i].Name] = current[i].ID
		}

		processed := make(map[uint]bool, len(desired))
		for _, row := range desired {
			name := strings.TrimSpace(row.Name)

			if row.ID != nil {
				table, ok := currentByID[*row.ID]
				if !ok {
					return apperr.Validation("row %q references table id %d, which does not exist in this store", name, *row.ID)
				}
				if owner, taken := nameToID[name]; taken && owner != table.ID {
					return apperr.Validation("table name %q is already in use", name)
				}
				if table.Name != name {
					delete(nameToID, table.Name)
					table.Name = name
					nameToID[name] = table.ID
					if err := tx.Save(table).Error; err != nil {
						return apperr.Internal(err)
					}
				}
				processed[table.ID] = true
				continue
			}

			if _, taken := nameToID[name]; taken {
				return apperr.Validation("table name %q is already in use", name)
			}
			table := models.Table{StoreID: storeID, Name: name, Status: models.TableStatusVacant}
			if err := tx.Create(&table).Error; err != nil {
				return apperr.Internal(err)
			}
			nameToID[name] = table.ID
			currentByID[table.ID] = &table
			processed[table.ID] = true
		}

		var idsToDelete []uint
		for _, t := range current {
			if !processed[t.ID] {
				idsToDelete = append(idsToDelete, t.ID)
			}
		}
		if len(idsToDelete) > 0 {
			for _, id := range idsToDelete {
				busy, err := hasActiveSession(tx, id)
				if err != nil {
					return err
				}
				if busy {
					return apperr.Conflict("table %q has an active session and cannot be removed from the layout", currentByID[id].Name)
				}
			}
			// One bulk tombstone keeps lock duration short.
			if err := tx.Where("id IN ?", idsToDelete).Delete(&models.Table{}).Error; err != nil {
				return apperr.Internal(err)
			}
		}

		if err := tx.Where("store_id = ?", storeID).Find(&final).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortTables(final)
	s.Gate.InvalidateUsage(storeID)
	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTablesSynced, Data: final})
	s.Log.Infof("store %d table layout synced: %d active tables", storeID, len(final))
	return final, nil
}

// validateSyncNames rejects empty and duplicate trimmed names before any
// storage is touched; all offending duplicates are listed.
func validateSyncNames(desired []TableSpec) error {
	seen := make(map[string]int, len(desired))
	var duplicates []string
	for _, row := range desired {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return apperr.Validation("table names must not be empty")
		}
		seen[name]++
		if seen[name] == 2 {
			duplicates = append(duplicates, name)
		}
	}
	if len(duplicates) > 0 {
		return apperr.Validation("duplicate table names in batch").
			WithDetails(map[string]interface{}{"duplicate_names": duplicates})
	}
	return nil
}

func sortTables(tables []models.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return utils.NaturalLess(tables[i].Name, tables[j].Name)
	})
}

func findStoreTable(tx *gorm.DB, storeID, tableID uint) (*models.Table, error) {
	var table models.Table
	err := tx.Where("store_id = ?", storeID).First(&table, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("table %d not found", tableID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &table, nil
}

func ensureStoreExists(tx *gorm.DB, storeID uint) error {
	var count int64
	if err := tx.Model(&models.Store{}).Where("id = ?", storeID).Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count == 0 {
		return apperr.NotFound("store %d not found", storeID)
	}
	return nil
}

func ensureNameFree(tx *gorm.DB, storeID uint, name string, excludeID uint) error {
	var count int64
	q := tx.Model(&models.Table{}).Where("store_id = ? AND name = ?", storeID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return apperr.Conflict("table name %q is already in use", name)
	}
	return nil
}

func hasActiveSession(tx *gorm.DB, tableID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.ActiveSession{}).
		Where("table_id = ? AND status = ?", tableID, models.SessionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}
