package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/middlewares"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

type StoreController struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewStoreController(db *gorm.DB, log *logrus.Logger) *StoreController {
	return &StoreController{DB: db, Log: log}
}

// CreateStore registers a store; the creating user becomes its owner and
// the store starts on the free tier.
func (sc *StoreController) CreateStore(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
		return
	}

	type request struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	store := models.Store{Name: req.Name, Slug: req.Slug}
	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return apperr.Conflict("store slug %q is already taken", req.Slug)
		}
		owner := models.StoreStaff{StoreID: store.ID, UserID: userID, Role: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return apperr.Internal(err)
		}
		sub := models.Subscription{StoreID: store.ID, Tier: "free", TableLimit: models.DefaultTableLimit}
		if err := tx.Create(&sub).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sc.Log.Infof("store %q created by user %d", store.Slug, userID)
	utils.RespondJSON(c, http.StatusCreated, "Store created", store)
}

// GetStore returns one store.
func (sc *StoreController) GetStore(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var store models.Store
	dbErr := sc.DB.First(&store, storeID).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		utils.RespondError(c, apperr.NotFound("store %d not found", storeID))
		return
	}
	if dbErr != nil {
		utils.RespondError(c, apperr.Internal(dbErr))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Store detail", store)
}

// AddStaff grants a user a role in the store. Only the owner or an admin
// may grant roles.
func (sc *StoreController) AddStaff(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
		return
	}
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	type request struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}
	if !models.IsValidRole(req.Role) {
		utils.RespondError(c, apperr.Validation("unknown role %q", req.Role))
		return
	}

	var caller models.StoreStaff
	dbErr := sc.DB.Where("store_id = ? AND user_id = ?", storeID, userID).First(&caller).Error
	if dbErr != nil || (caller.Role != models.RoleOwner && caller.Role != models.RoleAdmin) {
		utils.RespondError(c, apperr.Forbidden("insufficient role for this operation"))
		return
	}

	staff := models.StoreStaff{StoreID: uint(storeID), UserID: req.UserID, Role: req.Role}
	if err := sc.DB.Create(&staff).Error; err != nil {
		utils.RespondError(c, apperr.Conflict("user is already staff of this store"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Staff added", staff)
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(v), nil
}
