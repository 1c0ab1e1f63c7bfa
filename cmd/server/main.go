package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ttthanh1411/gym/internal/config"
	"github.com/ttthanh1411/gym/internal/database"
	"github.com/ttthanh1411/gym/internal/routes"
	activityws "github.com/ttthanh1411/gym/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := activityws.NewHub()
	go hub.Run(ctx)

	// 3. Setup Fiber
	app := fiber.New()

	if cfg.StrictOriginCheck() && strings.TrimSpace(cfg.AllowedOrigins) == "*" {
		log.Println("ALLOWED_ORIGINS is * in production; set it to the storefront origin")
	}

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigins}))
	app.Use(compress.New(compress.Config{Next: websocket.IsWebSocketUpgrade}))
	app.Use(etag.New(etag.Config{Next: websocket.IsWebSocketUpgrade}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
				"code":  "RATE_LIMITED",
			})
		},
	}))

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, database.DB, hub); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	// 4. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
