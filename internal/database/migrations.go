package database

import (
	"fmt"
	"sort"
	"time"

	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration 一个有版本号的迁移步骤
type Migration struct {
	Version     int
	Description string
	Up          func(tx *gorm.DB) error
}

// StepResult 单个迁移步骤的执行结果
type StepResult struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
	Status      string `json:"status"` // success, failed, skipped
	Error       string `json:"error,omitempty"`
}

const stepSkipped = "skipped"

// Report 迁移报告
type Report struct {
	Steps []StepResult `json:"steps"`
}

// Failed 失败的步骤
func (r Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == model.MigrationStatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Applied 本次执行成功的步骤数
func (r Report) Applied() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == model.MigrationStatusSuccess {
			n++
		}
	}
	return n
}

// Migrator 按版本顺序执行迁移, 每个步骤独立事务, 失败不影响后续步骤
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	now        func() time.Time
}

// NewMigrator 创建迁移器
func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	return &Migrator{db: db, migrations: sorted, now: time.Now}
}

// Migrate 执行未成功过的迁移, 总是返回报告
func (m *Migrator) Migrate() Report {
	var report Report

	tracking := true
	if err := m.db.AutoMigrate(&model.SchemaMigrationModel{}); err != nil {
		logger.Error("Failed to create schema_migrations table: %v", err)
		tracking = false
	}

	applied := map[int]bool{}
	if tracking {
		var done []model.SchemaMigrationModel
		if err := m.db.Where("status = ?", model.MigrationStatusSuccess).Find(&done).Error; err != nil {
			logger.Error("Failed to load applied migrations: %v", err)
		}
		for _, d := range done {
			applied[d.Version] = true
		}
	}

	for _, mig := range m.migrations {
		if applied[mig.Version] {
			report.Steps = append(report.Steps, StepResult{Version: mig.Version, Description: mig.Description, Status: stepSkipped})
			continue
		}

		result := m.run(mig)
		report.Steps = append(report.Steps, result)

		if tracking {
			m.record(mig, result)
		}
	}

	logger.Info("Database migration finished: %d applied, %d failed", report.Applied(), len(report.Failed()))
	return report
}

func (m *Migrator) run(mig Migration) (result StepResult) {
	result = StepResult{Version: mig.Version, Description: mig.Description}

	defer func() {
		if r := recover(); r != nil {
			result.Status = model.MigrationStatusFailed
			result.Error = fmt.Sprintf("panic: %v", r)
			logger.Error("Migration %d (%s) panicked: %v", mig.Version, mig.Description, r)
		}
	}()

	if err := m.db.Transaction(mig.Up); err != nil {
		result.Status = model.MigrationStatusFailed
		result.Error = err.Error()
		logger.Error("Migration %d (%s) failed: %v", mig.Version, mig.Description, err)
		return result
	}

	result.Status = model.MigrationStatusSuccess
	logger.Info("Migration %d (%s) applied", mig.Version, mig.Description)
	return result
}

func (m *Migrator) record(mig Migration, result StepResult) {
	row := model.SchemaMigrationModel{
		Version:     mig.Version,
		Description: mig.Description,
		Status:      result.Status,
		Error:       result.Error,
		AppliedAt:   m.now(),
	}
	err := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "status", "error", "applied_at"}),
	}).Create(&row).Error
	if err != nil {
		logger.Error("Failed to record migration %d: %v", mig.Version, err)
	}
}

// Status 读取已记录的迁移状态
func Status(db *gorm.DB) ([]model.SchemaMigrationModel, error) {
	var rows []model.SchemaMigrationModel
	if err := db.Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load migration status: %w", err)
	}
	return rows, nil
}
