package db

import (
	"referral_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.Counter{},
		&domain.User{},
		&domain.Company{},
		&domain.Wallet{},
		&domain.WalletTransaction{},
		&domain.RecommendationBatch{},
		&domain.RecommendationTask{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}

// DSN builds the MySQL data source name used by both server and migrate commands.
func DSN(user, password, host, port, name string) string {
	return user + ":" + password + "@tcp(" + host + ":" + port + ")/" + name + "?parseTime=true"
}
