package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/auth"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// observerRoles: any staff role of the store may observe its channel.
var observerRoles = []string{models.RoleOwner, models.RoleAdmin, models.RoleServer, models.RoleCashier}

type RealtimeController struct {
	Hub      *realtime.Hub
	Resolver *auth.Resolver
	Log      *logrus.Logger
}

func NewRealtimeController(hub *realtime.Hub, resolver *auth.Resolver, log *logrus.Logger) *RealtimeController {
	return &RealtimeController{Hub: hub, Resolver: resolver, Log: log}
}

// Observe upgrades the connection to a store's event channel. The
// handshake is authenticated with the same dual-credential resolution as
// mutations; without a valid credential no subscription is ever created.
func (rc *RealtimeController) Observe(c *gin.Context) {
	storeID, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	creds := auth.CredentialsFromRequest(c)
	if _, err := rc.Resolver.ResolveForStore(storeID, creds, observerRoles...); err != nil {
		utils.RespondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	rc.Hub.Register(storeID, conn)
	rc.Log.Infof("observer connected to store %d", storeID)

	// Drain the connection until the client goes away; observers only
	// receive, they never inject events.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	rc.Hub.Unregister(storeID, conn)
}
