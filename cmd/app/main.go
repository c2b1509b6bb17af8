package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raspadinha_backend/internal/cache"
	"raspadinha_backend/internal/config"
	"raspadinha_backend/internal/db"
	httpServer "raspadinha_backend/internal/http"
	"raspadinha_backend/internal/http/handlers"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/pix"
	"raspadinha_backend/internal/service"
	"raspadinha_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	cfg := config.Load()
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	redisClient := cache.Connect(cfg)

	provider, err := pix.NewProvider(cfg)
	if err != nil {
		logger.Fatal("pix provider setup failed", "error", err)
	}

	hub := ws.NewHub()
	dedup := cache.NewDedupStore(redisClient, cfg.PurchaseDedupTTL)

	auditService := service.NewAuditService(dbPool)
	walletService := service.NewWalletService(dbPool)
	affiliateService := service.NewAffiliateService(dbPool, walletService)
	authService := service.NewAuthService(dbPool, affiliateService)
	purchaseService := service.NewPurchaseService(dbPool, walletService, dedup, hub, auditService)
	paymentService := service.NewPaymentService(dbPool, cfg, provider, walletService, affiliateService, auditService)

	poller := paymentService.StartSettlementPoller()
	defer poller.Stop()

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	h := handlers.NewHandler(dbPool, authService, walletService, purchaseService, affiliateService, paymentService, auditService)
	httpServer.RegisterRoutes(r, dbPool, redisClient, cfg, h, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "pix_provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
