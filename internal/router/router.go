package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Bateyjosue/xenfi-systems/internal/cache"
	"github.com/Bateyjosue/xenfi-systems/internal/config"
	"github.com/Bateyjosue/xenfi-systems/internal/handler"
	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/storage"
	"github.com/Bateyjosue/xenfi-systems/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires services and handlers onto a gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, c cache.Cache, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	st := store.New(db)
	opts := service.Options{QueryTimeout: cfg.Database.QueryTimeout, CacheTTL: cfg.Cache.TTL}
	authSvc := service.NewAuthService(st, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		TokenTTL:   cfg.JWT.TTL(),
		BcryptCost: cfg.Security.BcryptCost,
	}, opts, logger)
	expenseSvc := service.NewExpenseService(st, c, opts, logger)
	statsSvc := service.NewStatsService(st, opts, logger)
	categorySvc := service.NewCategoryService(st, opts, logger)
	adminSvc := service.NewAdminService(st, opts, logger)

	receipts, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("receipt storage: %w", err)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.Server.FrontendURL),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if strings.HasPrefix(cfg.Upload.BaseURL, "/") {
		r.Static(cfg.Upload.BaseURL, cfg.Upload.Dir)
	}

	api := r.Group("/api")
	requireAuth := middleware.Auth(authSvc)

	authHandler := handler.NewAuthHandler(authSvc, cfg.JWT.CookieSecure)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", requireAuth, authHandler.Me)

	categoryHandler := handler.NewCategoryHandler(categorySvc)
	api.GET("/categories", categoryHandler.ListCategories)
	api.GET("/categories/:id", categoryHandler.GetCategory)
	categoryAdmin := api.Group("/categories", requireAuth, middleware.RequireAction(policy.CategoryWrite))
	categoryAdmin.POST("", categoryHandler.CreateCategory)
	categoryAdmin.PUT("/:id", categoryHandler.UpdateCategory)
	categoryAdmin.DELETE("/:id", categoryHandler.DeleteCategory)

	protected := api.Group("", requireAuth)

	expenseHandler := handler.NewExpenseHandler(expenseSvc)
	protected.GET("/expenses", expenseHandler.ListExpenses)
	protected.POST("/expenses", expenseHandler.CreateExpense)
	protected.GET("/expenses/:id", expenseHandler.GetExpense)
	protected.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	protected.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	statsHandler := handler.NewStatsHandler(statsSvc, adminSvc)
	protected.GET("/dashboard/stats", statsHandler.Dashboard)

	uploadHandler := handler.NewUploadHandler(receipts, cfg.Upload.MaxBytes)
	protected.POST("/upload", middleware.RequireAction(policy.ReceiptUpload), uploadHandler.Upload)

	exportHandler := handler.NewExportHandler(expenseSvc)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	admin := protected.Group("/admin")
	admin.GET("/stats", middleware.RequireAction(policy.AdminStats), statsHandler.AdminStats)
	admin.GET("/expenses", middleware.RequireAction(policy.AdminExpenses), statsHandler.AdminExpenses)
	admin.GET("/users", middleware.RequireAction(policy.AdminUsers), statsHandler.AdminUsers)

	return r, nil
}
