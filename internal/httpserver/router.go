package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitquest/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

// Pinger reports whether the backing store is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Habit        *handler.HabitHandler
	Completion   *handler.CompletionHandler
	Unlock       *handler.UnlockHandler
	Ledger       *handler.LedgerHandler
	Payment      *handler.PaymentHandler
	Notification *handler.NotificationHandler
}

func NewRouter(h Handlers, jwtSecret string, logger *zap.Logger, db Pinger) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	// MQ liveness is the worker's concern; the API only publishes through
	// the outbox table, so readiness is the database alone.
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/profile", h.Auth.Profile)

		auth.POST("/habits", h.Habit.Create)
		auth.GET("/habits", h.Habit.List)
		auth.GET("/habits/:id", h.Habit.Get)
		auth.PUT("/habits/:id", h.Habit.Update)
		auth.DELETE("/habits/:id", h.Habit.Delete)

		auth.POST("/habits/:id/complete", h.Completion.Complete)
		auth.GET("/completions", h.Completion.List)
		auth.GET("/completions/weekly", h.Completion.WeeklyProgress)

		auth.GET("/achievements", h.Unlock.ListAchievements)
		auth.POST("/achievements/evaluate", h.Unlock.Evaluate)
		auth.GET("/skills", h.Unlock.ListSkills)
		auth.POST("/skills/:id/unlock", h.Unlock.UnlockSkill)

		auth.GET("/penalties", h.Ledger.ListPenalties)
		auth.POST("/penalties/:id/pay", h.Ledger.MarkPenaltyPaid)
		auth.GET("/rewards", h.Ledger.ListRewards)
		auth.POST("/rewards/:id/claim", h.Ledger.MarkRewardClaimed)

		auth.POST("/payments/intent", h.Payment.CreateIntent)
		auth.POST("/payments/confirm", h.Payment.Confirm)

		auth.GET("/notifications", h.Notification.List)
		auth.POST("/notifications/:id/read", h.Notification.MarkRead)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(":" + port)
}
