package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/services"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// Cart endpoints live on the SessionController: they share its resolver
// and the same dual-credential surface.

// AddCartItem appends a line to the session's cart.
func (sc *SessionController) AddCartItem(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}

	var req services.CartItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	item, err := sc.Svc.AddCartItem(session.ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Cart item added", item)
}

// UpdateCartItem edits one cart line.
func (sc *SessionController) UpdateCartItem(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}
	itemID, err := parseUintParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req services.CartItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	item, err := sc.Svc.UpdateCartItem(session.ID, itemID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", item)
}

// RemoveCartItem deletes one cart line.
func (sc *SessionController) RemoveCartItem(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}
	itemID, err := parseUintParam(c, "item_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := sc.Svc.RemoveCartItem(session.ID, itemID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item removed", gin.H{"id": itemID})
}

// GetCart lists the session's cart.
func (sc *SessionController) GetCart(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}

	items, err := sc.Svc.ListCartItems(session.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart items", items)
}
