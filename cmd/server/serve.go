package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blues/memberadmin/internal/cache"
	"github.com/blues/memberadmin/internal/database"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/notify"
	"github.com/blues/memberadmin/internal/repository"
	"github.com/blues/memberadmin/internal/router"
	"github.com/blues/memberadmin/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the cycle close scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func seedOptions() database.SeedOptions {
	return database.SeedOptions{
		TotalShares:     cfg.Settlement.TotalShares,
		NotifyChannelID: cfg.Notify.ChannelID,
		AdminUsername:   cfg.Auth.AdminUsername,
		AdminPassword:   cfg.Auth.AdminPassword,
	}
}

func serve(ctx context.Context) error {
	if err := cfg.Auth.Validate(cfg.Server.Mode); err != nil {
		return err
	}
	if cfg.Auth.AdminPassword == "" {
		logger.Warn("Admin password not configured, skipping admin seed")
	}

	// 初始化数据库, 失败的迁移步骤只记录
	db, report, err := database.Init(cfg.Database, seedOptions())
	if err != nil {
		return err
	}
	for _, step := range report.Failed() {
		logger.Error("Migration %d (%s) failed: %s", step.Version, step.Description, step.Error)
	}
	logger.Info("Migrations applied: %d", report.Applied())

	health := repository.NewRegistry(3*time.Second, repository.NewGormChecker(db))

	var redisCache *cache.Cache
	if cfg.Redis.Enabled() {
		redisCache, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		health.Register(repository.NewRedisChecker(redisCache.Client()))
	}

	dispatcher, err := notify.NewDispatcher(notify.New(cfg.Notify), cfg.Notify.PoolSize, time.Duration(cfg.Notify.Timeout)*time.Second)
	if err != nil {
		return err
	}
	defer dispatcher.Release(shutdownTimeout)

	defaultShares, err := decimal.NewFromString(cfg.Settlement.TotalShares)
	if err != nil {
		return fmt.Errorf("settlement.total_shares: %w", err)
	}

	settlements := logic.NewSettlementLogic(db, logic.SettlementOptions{
		DefaultShares:  defaultShares,
		DefaultChannel: cfg.Notify.ChannelID,
		PeriodTTL:      time.Duration(cfg.Redis.PeriodTTL) * time.Second,
		Cache:          redisCache,
		Dispatcher:     dispatcher,
	})

	var buttonStore logic.ButtonConfigPort = logic.NewSettingButtonStore(db)
	if cfg.App.ButtonFile != "" {
		buttonStore = logic.NewFileButtonStore(cfg.App.ButtonFile)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	points := logic.NewPointLogic(db)
	r := router.Setup(router.Deps{
		Server:       cfg.Server,
		Auth:         logic.NewAuthLogic(db, cfg.Auth),
		Members:      logic.NewMemberLogic(db, cfg.App.PhoneRegion),
		Points:       points,
		Transactions: logic.NewTransactionLogic(db),
		Ledgers:      logic.NewLedgerLogic(db, redisCache),
		Settlements:  settlements,
		Settings:     logic.NewSettingLogic(db),
		Buttons:      logic.NewButtonLogic(buttonStore),
		Catalog:      logic.NewCatalogLogic(db, cfg.App.PhoneRegion),
		Health:       health,
	})

	// 启动定时任务
	if cfg.Scheduler.Enabled {
		var locker scheduler.Locker
		if redisCache != nil {
			locker = redisCache
		}
		job := scheduler.NewCycleCloseJob(settlements, locker, time.Duration(cfg.Scheduler.Interval)*time.Second)
		manager, err := scheduler.NewManager(job)
		if err != nil {
			return err
		}
		if err := manager.Start(); err != nil {
			return err
		}
		defer manager.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
