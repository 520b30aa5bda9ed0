package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/config"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/models"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/router"
	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

func main() {
	log := utils.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := cfg.OpenDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db, log)

	r := router.SetupRouter(router.Options{
		DB:         db,
		Log:        log,
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
	})

	log.Infof("listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB, log *logrus.Logger) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreStaff{},
		&models.Subscription{},
		&models.Table{},
		&models.ActiveSession{},
		&models.CartItem{},
	)
	if err != nil {
		log.Fatalf("failed to AutoMigrate: %v", err)
	}
}
