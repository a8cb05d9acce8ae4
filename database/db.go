package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gamefilm/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var DB *gorm.DB

// Open connects to the configured database and migrates the schema. For
// sqlite3 an empty dsn places gamefilm.db under dataPath.
func Open(driver, dsn, dataPath string) (*gorm.DB, error) {
	if driver == "" {
		driver = "sqlite3"
	}
	if driver == "sqlite3" && dsn == "" {
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		dsn = filepath.Join(dataPath, "gamefilm.db")
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Timeline{}, &models.ResumePosition{}, &models.Video{}).Error
}

// InitDB opens the database and installs it as the package-level handle.
func InitDB(driver, dsn, dataPath string) error {
	db, err := Open(driver, dsn, dataPath)
	if err != nil {
		return err
	}
	DB = db
	log.Printf("[DB] %s connection established and migrated", db.Dialect().GetName())
	return nil
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
