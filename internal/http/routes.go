package http

import (
	"os"
	"strconv"
	"time"

	"raspadinha_backend/internal/config"
	"raspadinha_backend/internal/http/handlers"
	"raspadinha_backend/internal/http/middleware"
	"raspadinha_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cache *redis.Client, cfg *config.Config, h *handlers.Handler, hub *ws.Hub, version string) {
	catalog := handlers.NewCatalogHandler(db)
	healthHandler := handlers.NewHealthHandler(db, cache, version)

	middleware.SetRedisClient(cache)

	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Live winners feed
	r.GET("/ws/winners", ws.HandleWS(hub))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	authRL := middleware.RedisRateLimit(authRateLimit, authRateWindow)
	v1.POST("/auth/register", authRL, h.Register)
	v1.POST("/auth/login", authRL, h.Login)
	v1.GET("/me", middleware.JWT(), h.Me)

	// Catalog (public)
	v1.GET("/raspadinhas", catalog.List)
	v1.GET("/raspadinhas/:slug", catalog.Get)

	// Purchase and reveal
	purchaseRL := middleware.PurchaseRateLimit(cfg.PurchaseRateLimit, cfg.PurchaseRateWindow)
	v1.POST("/raspadinhas/:slug/purchase", middleware.JWT(), purchaseRL, h.Purchase)
	v1.POST("/purchases/:id/reveal", middleware.JWT(), h.Reveal)
	v1.GET("/purchases", middleware.JWT(), h.ListPurchases)
	v1.GET("/purchases/:id", middleware.JWT(), h.GetPurchase)

	// Wallet
	v1.GET("/wallet", middleware.JWT(), h.GetWallet)
	v1.GET("/wallet/transactions", middleware.JWT(), h.GetTransactions)

	// Payments
	v1.POST("/deposits", middleware.JWT(), h.CreateDeposit)
	v1.GET("/deposits", middleware.JWT(), h.ListDeposits)
	v1.POST("/withdrawals", middleware.JWT(), h.RequestWithdrawal)
	v1.GET("/withdrawals", middleware.JWT(), h.ListWithdrawals)

	// Provider webhook. Unauthenticated; authenticated by HMAC signature
	// and kept off the Redis limiter so settlements survive a cache outage.
	v1.POST("/webhooks/pix", middleware.SimpleRateLimit(120, time.Minute), h.PixWebhook)

	// Referral system
	referral := v1.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/stats", h.GetReferralStats)
	}
}
