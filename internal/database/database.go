package database

import (
	"fmt"

	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Dialector 根据配置选择数据库驱动
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN()), nil
	case "mysql":
		return mysql.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open 连接数据库, 不做迁移
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger.ParseLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	logger.Info("Connected to %s database", dialector.Name())
	return db, nil
}

// Init 连接数据库并执行迁移, 迁移失败的步骤只记录不阻断启动
func Init(cfg config.DatabaseConfig, seed SeedOptions) (*gorm.DB, Report, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, Report{}, err
	}

	report := NewMigrator(db, Migrations(seed)).Migrate()
	return db, report, nil
}
