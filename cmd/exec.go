package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-portal-client/config"
	"event-portal-client/handlers"
	"event-portal-client/internal/api"
	"event-portal-client/internal/store"
	"event-portal-client/monitoring"
	"event-portal-client/security"
	"event-portal-client/services"
	"event-portal-client/utils"

	"github.com/labstack/echo/v5"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize the persistence substrate: Redis when reachable, memory
	// otherwise (state then lives only as long as the process).
	var kv store.KV
	var redisClient *redis.Client
	if client, err := utils.NewRedisClient(cfg.RedisURL); err == nil {
		redisClient = client
		defer redisClient.Close()
		kv = store.NewRedis(redisClient, cfg.RedisPrefix)
	} else {
		slog.Warn("redis unavailable, falling back to in-memory store", "error", err)
		kv = store.NewMemory()
	}

	// Backend client
	backend := api.NewClient(cfg.BackendBaseURL, cfg.RequestTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	sessionService := services.NewSessionService(kv, backend, cfg.SessionWindow, cfg.WarningThreshold,
		services.WithRedirectHook(func(reason error) {
			slog.Info("session torn down, front-end redirected to login", "reason", reason)
		}),
	)
	viewService := services.NewViewService(kv, cfg.ScrollRestoreDelay)
	paymentService := services.NewPaymentService(kv, backend, sessionService)

	// Settle the session before serving: a stored admin token is verified,
	// anything else starts unauthenticated.
	if err := sessionService.Bootstrap(ctx); err != nil {
		slog.Warn("session bootstrap", "error", err)
	}
	viewService.Restore(ctx)

	// Session countdown, one tick per second
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go sessionService.Run(ctx, ticker.C)

	// Optional gateway notification listener
	if cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn := pubnub.NewPubNub(pnConfig)
		listener := services.NewNotifyListener(pn, paymentService, cfg.NotifyChannel)
		go listener.Subscribe(ctx)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionService)
	viewHandler := handlers.NewViewHandler(viewService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, sessionService)
	adminHandler := handlers.NewAdminHandler(backend, sessionService)

	e := echo.New()

	// Auth endpoints
	loginGroup := e.Group("")
	if redisClient != nil {
		rateLimiter := security.NewRateLimiter(redisClient)
		loginGroup.Use(rateLimiter.LoginRateLimit())
	}
	loginGroup.POST("/auth/login", authHandler.Login)
	loginGroup.POST("/admin/auth/login", authHandler.AdminLogin)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/reverify", authHandler.Reverify)
	e.GET("/session", authHandler.GetSession)

	// View endpoints
	e.GET("/view", viewHandler.GetView)
	e.POST("/view/restore", viewHandler.Restore)
	e.POST("/view/navigate", viewHandler.Navigate)
	e.POST("/view/scroll", viewHandler.CaptureScroll)
	e.POST("/view/reset", viewHandler.Reset)
	e.POST("/view/clear", viewHandler.Clear)

	// Payment endpoints; success and error are the gateway return targets
	e.POST("/payment/checkout", paymentHandler.Checkout)
	e.GET("/payment/success", paymentHandler.Success)
	e.GET("/payment/error", paymentHandler.Error)
	e.POST("/payment/cancel", paymentHandler.Cancel)
	e.GET("/payment/history", paymentHandler.History)

	// Admin endpoints
	e.GET("/admin/transactions", adminHandler.GetTransactions)
	e.GET("/admin/statistics", adminHandler.GetStatistics)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if redisClient != nil {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return c.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	if cfg.EnableMetrics {
		monitoring.Serve(cfg.MetricsPort)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: e,
	}

	// Setup graceful shutdown
	go handleShutdown(cancel, srv)

	log.Printf("client gateway listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
