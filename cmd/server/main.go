package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/renthub/home-rental/internal/config"   // Internal config loader
	"github.com/renthub/home-rental/internal/database" // MySQL connection pool
	"github.com/renthub/home-rental/internal/handler"
	"github.com/renthub/home-rental/internal/lease" // Booking/agreement/payment orchestration
	"github.com/renthub/home-rental/internal/middleware"
	"github.com/renthub/home-rental/internal/notify"
	"github.com/renthub/home-rental/internal/queue"
	"github.com/renthub/home-rental/internal/repository"
	"github.com/renthub/home-rental/internal/router" // Internal router setup
)

func main() {
	// Load .env if present; in production the variables come from the
	// environment and the file is simply absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories serve reads; the Store carries every transactional write.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	propertyRepo := repository.NewPropertyRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	agreementRepo := repository.NewAgreementRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	sink := notify.NewSink(notificationRepo)
	facade := lease.NewFacade(repository.NewStore(db), sink)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	tenantHandler := handler.NewTenantHandler(facade, bookingRepo, agreementRepo)
	ownerHandler := handler.NewOwnerHandler(facade, bookingRepo)
	paymentHandler := handler.NewPaymentHandler(facade, agreementRepo, paymentRepo)
	propertyHandler := handler.NewPropertyHandler(propertyRepo)
	browseHandler := handler.NewBrowseHandler(propertyRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	e := echo.New() // Create Echo instance

	// Redis backs both rate limiting and the public response cache.  When
	// the connection fails the client is nil and both middlewares degrade
	// to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, browseHandler, cacheMW)
	router.RegisterTenant(e, tenantHandler, paymentHandler, cfg.JWTSecret)
	router.RegisterOwner(e, ownerHandler, propertyHandler, cfg.JWTSecret)
	router.RegisterShared(e, paymentHandler, notificationHandler, cfg.JWTSecret)

	// Consume lease.activated events in the background.  The consumer
	// reconnects on failure and never takes the API down.
	go func() {
		if err := queue.StartLeaseConsumer(); err != nil {
			log.Printf("lease consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
