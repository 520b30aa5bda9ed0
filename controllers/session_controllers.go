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

// checkoutRoles are the staff roles allowed to close a session.
var checkoutRoles = []string{models.RoleOwner, models.RoleAdmin, models.RoleServer, models.RoleCashier}

// sessionRoles are the staff roles allowed on session/cart mutations.
var sessionRoles = checkoutRoles

type SessionController struct {
	Svc      *services.SessionService
	Resolver *auth.Resolver
	Perm     auth.PermissionResolver
	Log      *logrus.Logger
}

func NewSessionController(svc *services.SessionService, resolver *auth.Resolver, perm auth.PermissionResolver, log *logrus.Logger) *SessionController {
	return &SessionController{Svc: svc, Resolver: resolver, Perm: perm, Log: log}
}

// StartSession opens a session, bound to a table or as a quick sale
// (owner/admin/server/cashier). This is the only response that carries
// the session secret.
func (sc *SessionController) StartSession(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
		return
	}
	if _, err := sc.Perm.CheckPermission(userID, storeID, checkoutRoles...); err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		TableID    *uint   `json:"table_id"`
		GuestCount int     `json:"guest_count"`
		GuestName  *string `json:"guest_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	session, err := sc.Svc.Start(storeID, services.StartInput{
		TableID:    req.TableID,
		GuestCount: req.GuestCount,
		GuestName:  req.GuestName,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// The secret is stripped from the model's JSON form, so it is
	// surfaced explicitly here, once.
	utils.RespondJSON(c, http.StatusCreated, "Session started", gin.H{
		"session":        session,
		"session_secret": session.Secret,
	})
}

// ListSessions returns the store's active sessions (staff only, secrets
// stripped).
func (sc *SessionController) ListSessions(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
		return
	}
	if _, err := sc.Perm.CheckPermission(userID, storeID, sessionRoles...); err != nil {
		utils.RespondError(c, err)
		return
	}

	sessions, err := sc.Svc.ListActive(storeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}

// resolveSession authorizes a session-scoped request with either
// credential form and returns the resolved actor plus the session; on
// failure the response is already written.
func (sc *SessionController) resolveSession(c *gin.Context, staffRoles ...string) (*auth.Actor, *models.ActiveSession, bool) {
	sessionID, err := parseUintParam(c, "session_id")
	if err != nil {
		utils.RespondError(c, err)
		return nil, nil, false
	}

	creds := auth.CredentialsFromRequest(c)
	actor, session, err := sc.Resolver.ResolveForSession(sessionID, creds, staffRoles...)
	if err != nil {
		utils.RespondError(c, err)
		return nil, nil, false
	}
	return actor, session, true
}

// GetSession returns one session, secret stripped.
func (sc *SessionController) GetSession(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// UpdateSession changes guest metadata.
func (sc *SessionController) UpdateSession(c *gin.Context) {
	_, session, ok := sc.resolveSession(c, sessionRoles...)
	if !ok {
		return
	}

	var req struct {
		GuestCount *int    `json:"guest_count"`
		GuestName  *string `json:"guest_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("%s", err.Error()))
		return
	}

	updated, err := sc.Svc.UpdateGuests(session.ID, req.GuestCount, req.GuestName)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session updated", updated)
}

// Checkout concludes the session. Staff callers need a checkout role;
// a customer proves possession of the session secret.
func (sc *SessionController) Checkout(c *gin.Context) {
	actor, session, ok := sc.resolveSession(c, checkoutRoles...)
	if !ok {
		return
	}

	closed, err := sc.Svc.Close(session.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	sc.Log.Infof("session %d closed by %s", session.ID, actor.Kind)
	utils.RespondJSON(c, http.StatusOK, "Session closed", closed)
}
