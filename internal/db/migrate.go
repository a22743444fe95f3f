package db

import (
	"fmt"                        // Error wrapping
	"growth_hub/internal/domain" // Importing domain models
	"strings"                    // Username normalisation

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table owned by the service
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Wallet{},
		&domain.Transaction{},
		&domain.Product{},
		&domain.Service{},
		&domain.Campaign{},
		&domain.Generation{},
	}
}

// Open connects to MySQL with the given data source name
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// AutoMigrate creates tables, missing foreign keys, constraints, columns and indexes
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Migrate performs automatic migration for the database schema and returns the open handle
func Migrate(dsn string) *gorm.DB {
	db, err := Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.WithField("tables", len(Models())).Info("Migration completed.") // Log successful migration
	return db
}

// PromoteAdmin gives an existing user the admin role
func PromoteAdmin(db *gorm.DB, username string) error {
	res := db.Model(&domain.User{}).
		Where("username = ?", strings.ToLower(username)).
		Update("role", domain.RoleAdmin)
	if res.Error != nil {
		return fmt.Errorf("promoting %q: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("promoting %q: %w", username, gorm.ErrRecordNotFound)
	}
	logrus.WithField("username", username).Info("User promoted to admin")
	return nil
}
