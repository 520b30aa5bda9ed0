package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/auth"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/middlewares"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/services"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

type TableController struct {
	Svc  *services.TableService
	Perm auth.PermissionResolver
	Log  *logrus.Logger
}

func NewTableController(svc *services.TableService, perm auth.PermissionResolver, log *logrus.Logger) *TableController {
	return &TableController{Svc: svc, Perm: perm, Log: log}
}

// requireRole resolves the staff caller and checks their role in the
// store; on failure the response is already written.
func (tc *TableController) requireRole(c *gin.Context, storeID uint, roles ...string) bool {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
		return false
	}
	if _, err := tc.Perm.CheckPermission(userID, storeID, roles...); err != nil {
		utils.RespondError(c, err)
		return false
	}
	return true
}

// CreateTable adds a table (owner/admin; quota-gated).
func (tc *TableController) CreateTable(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !tc.requireRole(c, storeID, models.RoleOwner, models.RoleAdmin) {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	table, err := tc.Svc.Create(storeID, req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// GetAllTables lists the store's active tables in natural order.
func (tc *TableController) GetAllTables(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	tables, err := tc.Svc.List(storeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID returns one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	tableID, err := parseUintParam(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	table, err := tc.Svc.Get(storeID, tableID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// RenameTable changes a table's display name (owner/admin).
func (tc *TableController) RenameTable(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	tableID, err := parseUintParam(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !tc.requireRole(c, storeID, models.RoleOwner, models.RoleAdmin) {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	table, err := tc.Svc.Rename(storeID, tableID, req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table renamed", table)
}

// DeleteTable tombstones a table (owner/admin).
func (tc *TableController) DeleteTable(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	tableID, err := parseUintParam(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !tc.requireRole(c, storeID, models.RoleOwner, models.RoleAdmin) {
		return
	}

	if err := tc.Svc.SoftDelete(storeID, tableID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

// SyncTables reconciles the store layout against a desired list
// (owner/admin).
func (tc *TableController) SyncTables(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !tc.requireRole(c, storeID, models.RoleOwner, models.RoleAdmin) {
		return
	}

	var req struct {
		Tables []services.TableSpec `json:"tables" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	tables, err := tc.Svc.Sync(storeID, req.Tables)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables synced", tables)
}

// UpdateTableStatus applies a state-machine transition
// (owner/admin/server).
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	tableID, err := parseUintParam(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !tc.requireRole(c, storeID, models.RoleOwner, models.RoleAdmin, models.RoleServer) {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	table, err := tc.Svc.UpdateStatus(storeID, tableID, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}
