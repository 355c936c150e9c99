package router

import (
	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/handler"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps 路由依赖的业务逻辑
type Deps struct {
	Server       config.ServerConfig
	Auth         *logic.AuthLogic
	Members      *logic.MemberLogic
	Points       *logic.PointLogic
	Transactions *logic.TransactionLogic
	Ledgers      *logic.LedgerLogic
	Settlements  *logic.SettlementLogic
	Settings     *logic.SettingLogic
	Buttons      *logic.ButtonLogic
	Catalog      *logic.CatalogLogic
	Health       *repository.Registry
}

func Setup(deps Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(requestID())
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(deps.Server.AllowOrigins))

	healthHandler := handler.NewHealthHandler(deps.Health)
	authHandler := handler.NewAuthHandler(deps.Auth)

	api := r.Group("/api")
	{
		// 健康检查
		api.GET("/health", healthHandler.Liveness)
		api.GET("/health/database", healthHandler.Database)

		api.POST("/auth/login", authHandler.Login)
	}

	secured := api.Group("")
	secured.Use(authRequired(deps.Auth))
	{
		memberHandler := handler.NewMemberHandler(deps.Members, deps.Points)
		members := secured.Group("/members")
		{
			members.POST("", memberHandler.CreateMember)
			members.GET("", memberHandler.GetMembers)
			members.GET("/:id", memberHandler.GetMember)
			members.PUT("/:id", memberHandler.UpdateMember)
			members.DELETE("/:id", memberHandler.DeleteMember)
			members.GET("/:id/points", memberHandler.GetMemberPoints)
		}

		transactionHandler := handler.NewTransactionHandler(deps.Transactions)
		transactions := secured.Group("/transactions")
		{
			transactions.POST("", transactionHandler.CreateTransaction)
			transactions.GET("", transactionHandler.GetTransactions)
			transactions.GET("/:id", transactionHandler.GetTransaction)
			transactions.DELETE("/:id", transactionHandler.VoidTransaction)
		}

		pointHandler := handler.NewPointHandler(deps.Points)
		points := secured.Group("/points")
		{
			points.GET("/types", pointHandler.GetPointTypes)
			points.POST("/types", pointHandler.CreatePointType)
			points.POST("/adjust", pointHandler.AdjustPoints)
			points.GET("/rules", pointHandler.GetRedemptionRules)
			points.POST("/rules", pointHandler.CreateRedemptionRule)
			points.POST("/redeem", pointHandler.RedeemPoints)
		}

		ledgerHandler := handler.NewLedgerHandler(deps.Ledgers)
		ledgers := secured.Group("/ledgers")
		{
			ledgers.POST("", ledgerHandler.CreateLedger)
			ledgers.GET("", ledgerHandler.GetLedgers)
			ledgers.POST("/balances", ledgerHandler.RecordBalances)
			ledgers.GET("/balances", ledgerHandler.GetBalances)
			ledgers.GET("/:period", ledgerHandler.GetLedger)
		}

		settlementHandler := handler.NewSettlementHandler(deps.Settlements)
		settlements := secured.Group("/settlements")
		{
			settlements.GET("", settlementHandler.GetSettlements)
			settlements.POST("/calculate", settlementHandler.Calculate)
			settlements.POST("", settlementHandler.Settle)
			settlements.GET("/:id", settlementHandler.GetSettlement)
			settlements.GET("/:id/export", settlementHandler.ExportSettlement)
		}

		settingHandler := handler.NewSettingHandler(deps.Settings, deps.Buttons)
		settings := secured.Group("/settings")
		{
			settings.GET("", settingHandler.GetSettings)
			settings.GET("/buttons", settingHandler.GetButtons)
			settings.PUT("/buttons", settingHandler.UpdateButtons)
			settings.PUT("/:key", settingHandler.UpdateSetting)
		}

		catalogHandler := handler.NewCatalogHandler(deps.Catalog)
		secured.GET("/fund-categories", catalogHandler.GetFundCategories)
		secured.GET("/funds", catalogHandler.GetFunds)
		secured.POST("/funds", catalogHandler.CreateFund)
		secured.GET("/agents", catalogHandler.GetAgents)
		secured.POST("/agents", catalogHandler.CreateAgent)
	}

	return r
}

// CORS中间件
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
	}
	if len(origins) == 0 || contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
