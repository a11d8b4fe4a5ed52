package router

import (
	"github.com/blues/lms/internal/handler"
	"github.com/blues/lms/internal/notify"
	"github.com/blues/lms/internal/task"
	"github.com/blues/lms/internal/webhook"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(
	db *gorm.DB,
	dispatcher *webhook.Dispatcher,
	notifier *notify.Notifier,
	settlementJob *task.SettlementJob,
	tierJob *task.TierJob,
) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "lms-reconciliation",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 外发通知
		webhookHandler := handler.NewWebhookHandler(db, dispatcher, notifier)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/dispatch", webhookHandler.DispatchEvent)
			webhooks.GET("/deliveries", webhookHandler.ListDeliveries)
		}

		// 任务手动触发
		taskHandler := handler.NewTaskHandler(settlementJob, tierJob)
		tasks := v1.Group("/tasks")
		{
			tasks.POST("/settlement/run", taskHandler.RunSettlement)
			tasks.POST("/tier-evaluation/run", taskHandler.RunTierEvaluation)
		}

		// 资金与分级审计
		ledgerHandler := handler.NewLedgerHandler(db)
		sellers := v1.Group("/sellers")
		{
			sellers.GET("/:id/balance", ledgerHandler.GetSellerBalance)
			sellers.GET("/:id/ledger", ledgerHandler.GetSellerLedger)
			sellers.GET("/:id/evaluations", ledgerHandler.GetSellerEvaluations)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
