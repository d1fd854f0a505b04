// Package databasetest opens an in-memory sqlite database with the full schema
// migrated, for use in service tests.
package databasetest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mingle/internal/database"
)

var seq atomic.Int64

func Open(t *testing.T) *database.Database {
	t.Helper()

	// A named shared-cache memory database keeps every pooled connection on the
	// same schema while staying private to the test.
	name := fmt.Sprintf("%s_%d", strings.ReplaceAll(t.Name(), "/", "_"), seq.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	wrapped := &database.Database{DB: db}
	if err := wrapped.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return wrapped
}
