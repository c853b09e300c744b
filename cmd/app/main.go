package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"BB_donate_backend/internal/api"
	"BB_donate_backend/internal/middleware"
	"BB_donate_backend/internal/notify"
	"BB_donate_backend/internal/payment"
	"BB_donate_backend/internal/repository"
	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rdb.Close()
	}

	hub := notify.NewHub(rdb)
	hub.Run(context.Background())

	var receipts service.ReceiptSender
	if cfg.TelegramAuth.TelegramBotToken != "" {
		bot, err := payment.NewTelegramBot(cfg.TelegramAuth.TelegramBotToken)
		if err != nil {
			zapLogger.Warn("Failed to initialize payment bot, receipts disabled", zap.Error(err))
		} else {
			receipts = bot
		}
	}

	gateway := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.Timeout, cfg.Payment.RetryMax)

	userService := service.NewUserService(repo)
	promoService := service.NewPromoCodeService(repo, hub)
	balanceService := service.NewBalanceService(repo)
	referralService := service.NewReferralService(repo, hub)
	donationService := service.NewDonationService(repo, promoService, referralService,
		gateway, receipts, hub, cfg.Payment.Timeout)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, referralService, telegramAuth)
	api.NewPromoCodeRoutes(a, promoService, telegramAuth)
	api.NewBalanceRoutes(a, balanceService, telegramAuth)
	api.NewReferralRoutes(a, referralService, telegramAuth)
	api.NewDonationRoutes(a, donationService, telegramAuth)
	api.NewAdminRoutes(a, userService, promoService, balanceService, telegramAuth, authz)
	api.NewEventRoutes(a, hub, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
