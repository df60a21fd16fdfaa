package main

import (
	"context" // Context for Redis and worker lifecycle
	"log"     // log package is needed for logging

	"referral_system/internal/api"        // Custom package for API handlers
	"referral_system/internal/config"     // Custom package for configuration
	"referral_system/internal/db"         // Custom package for the store handle
	"referral_system/internal/domain"     // Custom package for domain models
	"referral_system/internal/mailer"     // Custom package for outbound mail
	"referral_system/internal/middleware" // Custom package for middleware
	"referral_system/internal/recommend"  // Custom package for recommendations
	"referral_system/internal/referral"   // Custom package for referrer resolution
	"referral_system/internal/reward"     // Custom package for the reward ledger
	"referral_system/internal/sequence"   // Custom package for code allocation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database; the handle is passed explicitly to every
	// component, its lifecycle is owned here.
	dsn := db.DSN(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	gdb, err := db.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the referral core
	allocator := sequence.NewAllocator(gdb)                               // Sequence allocator
	resolver := referral.NewResolver(referral.NewIdentityStore(gdb), allocator) // Referrer resolver
	ledger := reward.NewLedger(gdb)                                       // Reward ledger

	// Wire the recommendation fan-out and its delivery worker
	recommendRepo := recommend.NewRepository(gdb)                 // Batch/task store
	taskQueue := recommend.NewQueue(redisClient)                  // Task-created event queue
	recommendSvc := recommend.NewService(recommendRepo, taskQueue) // Fan-out and consent service
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	worker := recommend.NewWorker(recommendRepo, taskQueue, mail, cfg.BaseURL, cfg.Locale)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx) // Consume delivery events alongside the server

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.POST("/register", api.RegisterCompanyHandler(gdb, resolver, ledger, cfg.RewardAmount)) // Registration endpoint
	r.POST("/recommendations", api.SubmitRecommendationHandler(recommendSvc))                // Recommendation submission
	// Consent callbacks, hit from email links; one handler per outcome
	r.GET("/recommendations/accept/:id", api.ConsentCallbackHandler(recommendSvc, domain.TaskAccepted))
	r.GET("/recommendations/decline/:id", api.ConsentCallbackHandler(recommendSvc, domain.TaskDeclined))

	// Auth route
	r.POST("/auth/login", api.LoginHandler(gdb, cfg.JWTSecret)) // Login endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(gdb))
	adminGroup.GET("/transactions", api.ListTransactionsHandler(gdb, redisClient)) // Reward ledger endpoint
	adminGroup.GET("/batches", api.ListBatchesHandler(gdb, redisClient))           // Recommendation batches endpoint
	adminGroup.GET("/wallets/:userID", api.GetWalletHandler(gdb, redisClient))     // Wallet lookup endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
