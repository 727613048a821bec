package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/config"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/handler"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/middleware"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/dedup"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Reception *handler.ReceptionHandler
	User      *handler.UserHandler
	Sales     *handler.SalesHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Tokens middleware.TokenValidator
	Cfg    *config.Config
	// Pending tracks in-flight writes. A nil registry gets a fresh one.
	Pending *dedup.Registry
	// RateLimiter is created from Cfg.RateLimit when nil.
	RateLimiter *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	if deps.Pending == nil {
		deps.Pending = dedup.New()
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = middleware.NewUserRateLimiter(middleware.RateLimiterConfigFrom(
			deps.Cfg.RateLimit.Requests,
			time.Duration(deps.Cfg.RateLimit.Duration)*time.Second,
		))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"in_flight": gin.H{
				"requests":  deps.Pending.Len(),
				"oldest_ms": deps.Pending.Oldest().Milliseconds(),
			},
			"rate_limiter": deps.RateLimiter.Stats(),
		})
	})
	once := middleware.Idempotency(middleware.IdempotencyConfig{Pending: deps.Pending})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h, deps)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Tokens))
		protected.Use(deps.RateLimiter.Middleware())

		registerProtectedRoutes(protected, h, once)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", deps.RateLimiter.Middleware(), h.Auth.Login)
		auth.GET("/access", h.Auth.CheckAccess)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, once gin.HandlerFunc) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)

	registerProductRoutes(protected, h, once)
	registerReceptionRoutes(protected, h, once)
	registerUserRoutes(protected, h)
	registerSalesRoutes(protected, h, once)
	registerPrinterRoutes(protected, h, once)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers, once gin.HandlerFunc) {
	products := protected.Group("/products")
	products.Use(middleware.RequireRole(enum.RoleCustomer))
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/out-of-stock", h.Product.GetOutOfStock)
		products.GET("/stats", h.Product.Stats)
		products.GET("/categories", h.Product.Categories)
		products.GET("/options", h.Product.Options)
		products.GET("/barcode/:barcode", h.Product.GetByBarcode)
		products.GET("/:id", h.Product.Get)
	}

	manage := products.Group("")
	manage.Use(middleware.RequireRole(enum.RoleInventory))
	{
		manage.GET("/export.csv", h.Product.ExportCSV)
		manage.GET("/capacity", h.Product.Capacity)
		manage.GET("/barcode/generate", h.Product.GenerateBarcode)
		manage.GET("/barcode/check", h.Product.CheckBarcode)
		manage.POST("", once, h.Product.Create)
		manage.PUT("/:id", once, h.Product.Update)
		manage.DELETE("/:id", once, h.Product.Delete)
	}
}

func registerReceptionRoutes(protected *gin.RouterGroup, h *Handlers, once gin.HandlerFunc) {
	reception := protected.Group("/reception")
	reception.Use(middleware.RequireRole(enum.RoleReception))
	{
		reception.POST("/mount", h.Reception.Mount)
		reception.DELETE("", h.Reception.Close)
		reception.GET("/state", h.Reception.State)
		reception.GET("/products", h.Reception.Products)
		reception.PUT("/mode", h.Reception.SetMode)

		reception.POST("/scan/keys", h.Reception.KeyInput)
		reception.POST("/scan", h.Reception.Scan)
		reception.GET("/search", h.Reception.Search)

		reception.POST("/cart", h.Reception.AddToCart)
		reception.PUT("/cart", h.Reception.UpdateQuantity)
		reception.DELETE("/cart/:index", h.Reception.RemoveFromCart)
		reception.DELETE("/cart", h.Reception.ClearCart)

		reception.PUT("/tax", h.Reception.SetTax)
		reception.PUT("/payment", h.Reception.SetPayment)
		reception.PUT("/customer", h.Reception.SetCustomer)

		reception.POST("/checkout", once, h.Reception.Checkout)
		reception.GET("/transactions", h.Reception.Transactions)
		reception.POST("/reprint/:order", once, h.Reception.Reprint)
		reception.GET("/receipt/:order", h.Reception.Receipt)

		reception.GET("/prints", h.Reception.Prints)
		reception.POST("/print/:order/confirm", h.Reception.ConfirmPrint)
		reception.POST("/print/:order/resolve", h.Reception.ResolvePrint)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	owner := protected.Group("")
	owner.Use(middleware.RequireRole(enum.RoleOwner))
	{
		owner.GET("/users", h.User.List)
		owner.GET("/logs", h.User.Logs)
	}
}

func registerSalesRoutes(protected *gin.RouterGroup, h *Handlers, once gin.HandlerFunc) {
	sales := protected.Group("/sales")
	{
		sales.POST("/legacy", middleware.RequireRole(enum.RoleReception), once, h.Sales.RecordLegacy)
	}

	history := sales.Group("")
	history.Use(middleware.RequireRole(enum.RoleOwner))
	{
		history.GET("", h.Sales.List)
		history.GET("/legacy", h.Sales.Legacy)
		history.GET("/:order", h.Sales.Get)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers, once gin.HandlerFunc) {
	printer := protected.Group("/printer")
	printer.Use(middleware.RequireRole(enum.RoleReception))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", once, h.Printer.TestPrint)
	}
}
