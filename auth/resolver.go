package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// Credentials carries the at-most-two credential forms a request may
// present: an opaque customer session secret and/or a staff identity
// token. The resolver decides which one wins.
type Credentials struct {
	SessionSecret string
	StaffToken    string
}

// CredentialsFromRequest pulls both credential forms off a request.
// The session secret travels in the X-Session-Secret header (or the
// session_secret query param on websocket handshakes); the staff token
// is the usual Bearer header (or token query param on handshakes).
func CredentialsFromRequest(c *gin.Context) Credentials {
	creds := Credentials{
		SessionSecret: c.GetHeader("X-Session-Secret"),
		StaffToken:    strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "),
	}
	if creds.SessionSecret == "" {
		creds.SessionSecret = c.Query("session_secret")
	}
	if creds.StaffToken == "" {
		creds.StaffToken = c.Query("token")
	}
	return creds
}

// Resolver turns raw credentials into an Actor. No component below it
// ever re-inspects credentials.
type Resolver struct {
	db        *gorm.DB
	jwtSecret []byte
	perm      PermissionResolver
}

func NewResolver(db *gorm.DB, jwtSecret []byte, perm PermissionResolver) *Resolver {
	return &Resolver{db: db, jwtSecret: jwtSecret, perm: perm}
}

// ResolveForSession authorizes access to one session and returns the
// Actor together with the freshly loaded session row.
//
// Resolution order: no credential at all is Unauthorized. A session
// secret, when present, is checked first and a mismatch is Forbidden
// even if a staff token was also sent. A staff token alone is verified
// and the caller's role in the session's store must be in staffRoles;
// non-members of that store get NotFound, the same as for a session
// that does not exist. Customer-path failures never reveal whether the
// session exists either.
func (r *Resolver) ResolveForSession(sessionID uint, creds Credentials, staffRoles ...string) (*Actor, *models.ActiveSession, error) {
	if creds.SessionSecret == "" && creds.StaffToken == "" {
		return nil, nil, apperr.Unauthorized("provide a session secret or an identity token")
	}

	var session models.ActiveSession
	err := r.db.First(&session, sessionID).Error
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !notFound {
		return nil, nil, apperr.Internal(err)
	}

	if creds.SessionSecret != "" {
		if notFound || !secretsMatch(session.Secret, creds.SessionSecret) {
			return nil, nil, apperr.Forbidden("session secret does not match")
		}
		return &Actor{Kind: ActorCustomer, SessionID: session.ID}, &session, nil
	}

	claims, err := utils.ParseToken(r.jwtSecret, creds.StaffToken)
	if err != nil {
		return nil, nil, err
	}
	if notFound {
		return nil, nil, apperr.NotFound("session %d not found", sessionID)
	}

	role, err := r.perm.ResolveRole(claims.UserID, session.StoreID)
	if err != nil {
		// A token holder with no standing in the session's store gets the
		// same answer as for a session that does not exist, so session IDs
		// cannot be enumerated across stores.
		if apperr.IsKind(err, apperr.KindForbidden) {
			return nil, nil, apperr.NotFound("session %d not found", sessionID)
		}
		return nil, nil, err
	}
	for _, allowed := range staffRoles {
		if role == allowed {
			return &Actor{Kind: ActorStaff, UserID: claims.UserID, Role: role}, &session, nil
		}
	}
	return nil, nil, apperr.Forbidden("insufficient role for this operation")
}

// ResolveForStore authorizes a store-scoped connection (the realtime
// handshake). A customer must hold the secret of an active session in
// the store; staff must hold one of staffRoles there.
func (r *Resolver) ResolveForStore(storeID uint, creds Credentials, staffRoles ...string) (*Actor, error) {
	if creds.SessionSecret == "" && creds.StaffToken == "" {
		return nil, apperr.Unauthorized("provide a session secret or an identity token")
	}

	if creds.SessionSecret != "" {
		var session models.ActiveSession
		err := r.db.
			Where("store_id = ? AND secret = ? AND status = ?", storeID, creds.SessionSecret, models.SessionStatusActive).
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Forbidden("session secret does not match")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return &Actor{Kind: ActorCustomer, SessionID: session.ID}, nil
	}

	claims, err := utils.ParseToken(r.jwtSecret, creds.StaffToken)
	if err != nil {
		return nil, err
	}
	role, err := r.perm.CheckPermission(claims.UserID, storeID, staffRoles...)
	if err != nil {
		return nil, err
	}
	return &Actor{Kind: ActorStaff, UserID: claims.UserID, Role: role}, nil
}

// secretsMatch compares secrets in constant time.
func secretsMatch(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
