// Package testutil provides shared test helpers for databases and fixtures.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"time-tracker/internal/model"
	"time-tracker/internal/repo"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a migrated SQLite database in the test's temp dir.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "time-tracker-test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Project inserts an active project and returns it.
func Project(t testing.TB, db *gorm.DB, name string) model.Project {
	t.Helper()
	p := model.Project{Name: name}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
