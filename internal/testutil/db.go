// Package testutil 测试辅助: 临时 sqlite 数据库
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/database"
	"gorm.io/gorm"
)

// SeedOptions 测试默认数据
var SeedOptions = database.SeedOptions{
	TotalShares:     "10",
	NotifyChannelID: "-100200300",
	AdminUsername:   "admin",
	AdminPassword:   "secret",
}

// OpenDB 打开一个未迁移的临时 sqlite 数据库
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     path + "?_busy_timeout=5000&_journal_mode=WAL",
		LogLevel: "error",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewDB 打开临时数据库并执行全部迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenDB(t)
	report := database.NewMigrator(db, database.Migrations(SeedOptions)).Migrate()
	if failed := report.Failed(); len(failed) > 0 {
		t.Fatalf("Migrations failed: %+v", failed)
	}
	return db
}
