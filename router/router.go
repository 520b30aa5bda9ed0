package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/auth"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/controllers"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/middlewares"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/realtime"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/services"
)

// Options carries everything the router needs wired in.
type Options struct {
	DB         *gorm.DB
	Log        *logrus.Logger
	JWTSecret  []byte
	CORSOrigin string
}

// SetupRouter builds the full engine: services, controllers and routes.
// Routes are grouped by credential requirement — public reads, staff
// (Bearer token) mutations, and dual-credential session/cart endpoints.
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware(opts.Log))

	hub := realtime.NewHub(opts.Log)
	gate := services.NewUsageGate(opts.DB)
	perm := auth.NewPermissionResolver(opts.DB)
	resolver := auth.NewResolver(opts.DB, opts.JWTSecret, perm)

	tableSvc := services.NewTableService(opts.DB, opts.Log, gate, hub)
	sessionSvc := services.NewSessionService(opts.DB, opts.Log, hub)

	userCtrl := controllers.NewUserController(opts.DB, opts.Log, opts.JWTSecret)
	storeCtrl := controllers.NewStoreController(opts.DB, opts.Log)
	tableCtrl := controllers.NewTableController(tableSvc, perm, opts.Log)
	sessionCtrl := controllers.NewSessionController(sessionSvc, resolver, perm, opts.Log)
	realtimeCtrl := controllers.NewRealtimeController(hub, resolver, opts.Log)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Credential endpoints get the strict per-IP limiter.
	public := r.Group("/")
	public.Use(middlewares.StrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Public reads.
	r.GET("/stores/:store_id", storeCtrl.GetStore)
	r.GET("/stores/:store_id/tables", tableCtrl.GetAllTables)
	r.GET("/stores/:store_id/tables/:table_id", tableCtrl.GetTableByID)

	// Staff mutations; role checks happen per operation once the target
	// store is known.
	staff := r.Group("/")
	staff.Use(middlewares.AuthMiddleware(opts.JWTSecret))
	{
		staff.POST("/stores", storeCtrl.CreateStore)
		staff.POST("/stores/:store_id/staff", storeCtrl.AddStaff)

		staff.POST("/stores/:store_id/tables", tableCtrl.CreateTable)
		staff.PATCH("/stores/:store_id/tables/:table_id", tableCtrl.RenameTable)
		staff.DELETE("/stores/:store_id/tables/:table_id", tableCtrl.DeleteTable)
		staff.PUT("/stores/:store_id/tables/sync", tableCtrl.SyncTables)
		staff.PATCH("/stores/:store_id/tables/:table_id/status", tableCtrl.UpdateTableStatus)

		staff.POST("/stores/:store_id/sessions", sessionCtrl.StartSession)
		staff.GET("/stores/:store_id/sessions", sessionCtrl.ListSessions)
	}

	// Session-scoped endpoints accept a session secret or a staff token;
	// the resolver inside each handler decides.
	session := r.Group("/sessions/:session_id")
	{
		session.GET("", sessionCtrl.GetSession)
		session.PATCH("", sessionCtrl.UpdateSession)
		session.POST("/checkout", sessionCtrl.Checkout)
		session.GET("/cart", sessionCtrl.GetCart)
		session.POST("/cart/items", sessionCtrl.AddCartItem)
		session.PATCH("/cart/items/:item_id", sessionCtrl.UpdateCartItem)
		session.DELETE("/cart/items/:item_id", sessionCtrl.RemoveCartItem)
	}

	// Realtime channel; handshake-authenticated in the handler.
	r.GET("/ws/stores/:store_id", realtimeCtrl.Observe)

	return r
}
