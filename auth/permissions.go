package auth

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
)

// PermissionResolver answers whether a user holds one of a set of roles
// in a store. Consumers treat it as a black box.
type PermissionResolver interface {
	// ResolveRole returns the user's role in the store, or Forbidden if
	// the user is not staff there.
	ResolveRole(userID, storeID uint) (string, error)

	// CheckPermission returns the user's role if it is in allowed,
	// Forbidden otherwise. Existence of the store is never revealed to
	// callers that fail the check.
	CheckPermission(userID, storeID uint, allowed ...string) (string, error)
}

type storePermissionResolver struct {
	db *gorm.DB
}

func NewPermissionResolver(db *gorm.DB) PermissionResolver {
	return &storePermissionResolver{db: db}
}

func (r *storePermissionResolver) ResolveRole(userID, storeID uint) (string, error) {
	var staff models.StoreStaff
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Forbidden("you are not a staff member of this store")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return staff.Role, nil
}

func (r *storePermissionResolver) CheckPermission(userID, storeID uint, allowed ...string) (string, error) {
	role, err := r.ResolveRole(userID, storeID)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if role == a {
			return role, nil
		}
	}
	return "", apperr.Forbidden("insufficient role for this operation")
}
