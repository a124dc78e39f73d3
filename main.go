package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"innerspark/config"
	"innerspark/database"
	"innerspark/logger"
	"innerspark/metrics"
	"innerspark/payment"
	"innerspark/revocation"
	adminRoutes "innerspark/routers/adminRoutes"
	analyticsRoutes "innerspark/routers/analyticsRoutes"
	authRoutes "innerspark/routers/authRoutes"
	courseRoutes "innerspark/routers/courseRoutes"
	paymentRoutes "innerspark/routers/paymentRoutes"
	supportRoutes "innerspark/routers/supportRoutes"
	"innerspark/storage"
	"innerspark/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppEnv); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Log.Sync()

	if err := database.ConnectDb(); err != nil {
		logger.Log.Fatal("database connection failed", "error", err)
	}
	if err := storage.Setup(context.Background(), config.AppConfig); err != nil {
		logger.Log.Fatal("storage setup failed", "error", err)
	}
	utils.SetupMailer(config.AppConfig)

	if config.AppConfig.RedisURL != "" {
		store, err := revocation.NewRedisStore(config.AppConfig.RedisURL)
		if err != nil {
			logger.Log.Fatal("redis connection failed", "error", err)
		}
		revocation.Default = store
	}
	if config.AppConfig.MidtransServerKey != "" {
		payment.Default = payment.NewMidtrans(config.AppConfig.MidtransServerKey, config.AppConfig.MidtransProduction)
	}

	scheduler := utils.InitializeSchedulers()

	app := fiber.New(fiber.Config{
		BodyLimit: utils.MaxUploadSize,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  config.AppConfig.CORSOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE",
		AllowHeaders:  "Content-Type,Authorization",
		ExposeHeaders: "X-Access,X-Preview-Duration",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			// gateway retries and file streaming must not be throttled
			return c.Path() == "/api/payments/notification" || strings.HasPrefix(c.Path(), "/api/secure-files/")
		},
	}))
	app.Use(metrics.Default.Middleware())

	api := app.Group("/api")
	authRoutes.SetupAuthRoutes(api)
	courseRoutes.SetupCourseRoutes(api)
	courseRoutes.SetupAdminCourseRoutes(api)
	paymentRoutes.SetupPaymentRoutes(api)
	supportRoutes.SetupSupportRoutes(api)
	analyticsRoutes.SetupAnalyticsRoutes(api)
	adminRoutes.SetupAdminRoutes(api)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down")
		<-scheduler.Stop().Done()
		_ = app.Shutdown()
		_ = metrics.Default.Shutdown(context.Background())
	}()

	logger.Log.Info("server is running", "port", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.Log.Fatal("server stopped", "error", err)
	}
}
