package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type Config struct {
	Port       string
	GinMode    string
	JWTSecret  []byte
	CORSOrigin string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string
}

// Load reads configuration from the environment, honouring a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return &Config{
		Port:       envOr("PORT", "8080"),
		GinMode:    os.Getenv("GIN_MODE"),
		JWTSecret:  []byte(secret),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		DBUser:     envOr("DB_USER", "root"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     envOr("DB_HOST", "127.0.0.1"),
		DBPort:     envOr("DB_PORT", "3306"),
		DBName:     envOr("DB_NAME", "food_house"),
	}, nil
}

// OpenDB connects to MySQL using the configured DSN.
func (c *Config) OpenDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
