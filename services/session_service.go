package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
)

// SessionService owns the session lifecycle and the cart attached to a
// session. Authorization happens before these methods are called; they
// re-validate entity state (not permissions) inside their transactions.
type SessionService struct {
	DB  *gorm.DB
	Log *logrus.Logger
	Hub realtime.Broadcaster
}

func NewSessionService(db *gorm.DB, log *logrus.Logger, hub realtime.Broadcaster) *SessionService {
	return &SessionService{DB: db, Log: log, Hub: hub}
}

// StartInput describes a session to open: bound to a table when TableID
// is set, an unbound quick sale otherwise.
type StartInput struct {
	TableID    *uint
	GuestCount int
	GuestName  *string
}

// Start opens a session. A bound session requires the table to be VACANT
// with no existing active session; the table moves to SEATED in the same
// transaction. The returned session carries the freshly issued secret —
// the caller must surface it now, no later read will include it.
func (s *SessionService) Start(storeID uint, in StartInput) (*models.ActiveSession, error) {
	if in.GuestCount <= 0 {
		in.GuestCount = 1
	}

	session := models.ActiveSession{
		StoreID:     storeID,
		TableID:     in.TableID,
		SessionType: models.SessionTypeManual,
		Status:      models.SessionStatusActive,
		Secret:      uuid.NewString(),
		GuestCount:  in.GuestCount,
		GuestName:   in.GuestName,
	}
	if in.TableID != nil {
		session.SessionType = models.SessionTypeTable
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureStoreExists(tx, storeID); err != nil {
			return err
		}

		var table *models.Table
		if in.TableID != nil {
			var err error
			table, err = findStoreTable(tx, storeID, *in.TableID)
			if err != nil {
				return err
			}
			busy, err := hasActiveSession(tx, table.ID)
			if err != nil {
				return err
			}
			if busy {
				return apperr.Conflict("table %q already has an active session", table.Name)
			}
			if table.Status != models.TableStatusVacant {
				return apperr.Conflict("table %q is %s, not VACANT", table.Name, table.Status)
			}
		}

		if err := tx.Create(&session).Error; err != nil {
			return apperr.Internal(err)
		}

		if table != nil {
			table.Status = models.TableStatusSeated
			if err := tx.Save(table).Error; err != nil {
				return apperr.Internal(err)
			}
			session.Table = table
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventSessionStarted, Data: session})
	if session.Table != nil {
		s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventTableStatusChanged, Data: session.Table})
	}
	s.Log.Infof("session %d started in store %d (type=%s)", session.ID, storeID, session.SessionType)
	return &session, nil
}

// ListActive returns the store's active sessions, secrets stripped by
// the model's json tag.
func (s *SessionService) ListActive(storeID uint) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	err := s.DB.Preload("Table").
		Where("store_id = ? AND status = ?", storeID, models.SessionStatusActive).
		Find(&sessions).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return sessions, nil
}

// UpdateGuests changes the guest metadata of an active session.
func (s *SessionService) UpdateGuests(sessionID uint, guestCount *int, guestName *string) (*models.ActiveSession, error) {
	var session *models.ActiveSession
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		if guestCount != nil {
			if *guestCount <= 0 {
				return apperr.Validation("guest count must be positive")
			}
			session.GuestCount = *guestCount
		}
		if guestName != nil {
			session.GuestName = guestName
		}
		if err := tx.Save(session).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(session.StoreID, realtime.Event{Event: realtime.EventSessionUpdated, Data: session})
	return session, nil
}

// Close concludes a session. A bound table moves to CLEANING in the same
// transaction so it goes through bussing before reuse.
func (s *SessionService) Close(sessionID uint) (*models.ActiveSession, error) {
	var session *models.ActiveSession
	var table *models.Table
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}

		now := time.Now()
		session.Status = models.SessionStatusClosed
		session.ClosedAt = &now
		if err := tx.Save(session).Error; err != nil {
			return apperr.Internal(err)
		}

		if session.TableID != nil {
			table, err = findStoreTable(tx, session.StoreID, *session.TableID)
			if err != nil {
				return err
			}
			table.Status = models.TableStatusCleaning
			if err := tx.Save(table).Error; err != nil {
				return apperr.Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(session.StoreID, realtime.Event{Event: realtime.EventSessionClosed, Data: session})
	if table != nil {
		s.Hub.Publish(session.StoreID, realtime.Event{Event: realtime.EventTableStatusChanged, Data: table})
	}
	s.Log.Infof("session %d closed in store %d", session.ID, session.StoreID)
	return session, nil
}

// CartItemInput is the payload for adding or updating a cart line.
type CartItemInput struct {
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Note      *string `json:"note"`
	UnitPrice float64 `json:"unit_price" binding:"min=0"`
}

// AddCartItem appends a line to an active session's cart.
func (s *SessionService) AddCartItem(sessionID uint, in CartItemInput) (*models.CartItem, error) {
	var item models.CartItem
	var storeID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		session, err := findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		storeID = session.StoreID

		item = models.CartItem{
			SessionID: session.ID,
			Name:      in.Name,
			Quantity:  in.Quantity,
			Note:      in.Note,
			UnitPrice: in.UnitPrice,
		}
		if err := tx.Create(&item).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventCartUpdated, Data: map[string]interface{}{
		"session_id": sessionID,
		"item":       item,
	}})
	return &item, nil
}

// UpdateCartItem edits one line of an active session's cart.
func (s *SessionService) UpdateCartItem(sessionID, itemID uint, in CartItemInput) (*models.CartItem, error) {
	var item models.CartItem
	var storeID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		session, err := findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		storeID = session.StoreID

		if err := tx.Where("session_id = ?", sessionID).First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart item %d not found", itemID)
			}
			return apperr.Internal(err)
		}

		item.Name = in.Name
		item.Quantity = in.Quantity
		item.Note = in.Note
		item.UnitPrice = in.UnitPrice
		if err := tx.Save(&item).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventCartUpdated, Data: map[string]interface{}{
		"session_id": sessionID,
		"item":       item,
	}})
	return &item, nil
}

// RemoveCartItem deletes one line of an active session's cart.
func (s *SessionService) RemoveCartItem(sessionID, itemID uint) error {
	var storeID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		session, err := findActiveSession(tx, sessionID)
		if err != nil {
			return err
		}
		storeID = session.StoreID

		res := tx.Where("session_id = ?", sessionID).Delete(&models.CartItem{}, itemID)
		if res.Error != nil {
			return apperr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart item %d not found", itemID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Hub.Publish(storeID, realtime.Event{Event: realtime.EventCartUpdated, Data: map[string]interface{}{
		"session_id":      sessionID,
		"removed_item_id": itemID,
	}})
	return nil
}

// ListCartItems returns the cart of a session (active or closed).
func (s *SessionService) ListCartItems(sessionID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.Where("session_id = ?", sessionID).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// findActiveSession loads a session and rejects closed ones. The store
// the session belongs to is read from the row itself, never from caller
// input, so a credential for one store cannot steer another.
func findActiveSession(tx *gorm.DB, sessionID uint) (*models.ActiveSession, error) {
	var session models.ActiveSession
	err := tx.First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("session %d not found", sessionID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if session.Status != models.SessionStatusActive {
		return nil, apperr.Conflict("session %d is already closed", sessionID)
	}
	return &session, nil
}
