package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/middleware"
)

type Handlers struct {
	Auth      *AuthHandler
	Product   *ProductHandler
	Cart      *CartHandler
	Order     *OrderHandler
	Payment   *PaymentHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler
}

type RouterConfig struct {
	JWTSecret      string
	Users          middleware.UserLookup
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Observability(cfg.Logger, cfg.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if h.Health != nil {
		router.GET("/healthz", h.Health.Healthz)
		router.GET("/readyz", h.Health.Readyz)
	}
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	authed := middleware.Auth(cfg.JWTSecret, cfg.Users)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)

		products := api.Group("/products")
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.GetByID)
		products.POST("", authed, h.Product.Create)

		cart := api.Group("/cart", authed)
		cart.GET("", h.Cart.GetCart)
		cart.POST("", h.Cart.AddItem)
		cart.DELETE("/:id", h.Cart.DeleteItem)

		orders := api.Group("/orders", authed)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)

		api.POST("/create-payment-intent", authed, h.Payment.CreateIntent)
		api.POST("/confirm-payment", authed, h.Payment.Confirm)
		api.POST("/mock-payment", authed, h.Payment.MockPay)
		// Authenticated by the processor signature, not a bearer token.
		api.POST("/stripe-webhook", h.Payment.Webhook)

		if h.Analytics != nil {
			api.GET("/analytics/sales", authed, h.Analytics.Sales)
		}
	}
	return router
}
