package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the shared gorm handle.
var DB *gorm.DB

// PostgresConfig carries the connection settings for Connect.
type PostgresConfig struct {
	User     string
	Password string
	DBName   string
	Host     string
	Port     string
	SSLMode  string
	TimeZone string
}

// Connect opens the Postgres connection and stores it in DB.
func Connect(cfg PostgresConfig) error {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	DB = db
	log.Println("Connected to Postgres")
	return nil
}
