package main

import (
	"log"
	"os"
	"time"

	"xmasbingo/database"
	"xmasbingo/handlers"
	"xmasbingo/handlers/admin"
	"xmasbingo/middleware"
	"xmasbingo/services"
	"xmasbingo/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()
	db := database.GetDB()

	// Blob store: R2 when configured, local disk otherwise
	var blobs storage.BlobStore
	var localMedia bool
	if os.Getenv("R2_BUCKET_NAME") != "" {
		store, err := storage.NewS3Store()
		if err != nil {
			log.Fatalf("FATAL: blob store configuration invalid: %v", err)
		}
		blobs = store
		log.Println("📦 Using R2 blob storage")
	} else {
		mediaDir := getEnv("MEDIA_DIR", "./media")
		baseURL := getEnv("PUBLIC_BASE_URL", "http://localhost:3000") + "/media"
		store, err := storage.NewLocalStore(mediaDir, baseURL)
		if err != nil {
			log.Fatalf("FATAL: could not prepare media dir: %v", err)
		}
		blobs = store
		localMedia = true
		log.Printf("📦 Using local blob storage at %s", mediaDir)
	}

	// Wire the engine
	svc := services.NewBingoService(
		database.NewGroupStore(db),
		database.NewUserStore(db),
		database.NewSubmissionStore(db),
		blobs,
	)
	handlers.InitHandlers(svc, blobs)
	admin.InitAdminHandlers(svc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    64 * 1024 * 1024, // videos up to ~50MB plus form overhead
		ReadTimeout:  2 * time.Minute,  // uploads are bounded separately at 90s
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(middleware.RateLimitMiddleware())

	// Serve locally stored proof files
	if localMedia {
		app.Static("/media", getEnv("MEDIA_DIR", "./media"))
	}

	// API Routes
	api := app.Group("/api")

	api.Get("/tasks", handlers.GetTasks)

	api.Post("/groups", middleware.StrictRateLimitMiddleware(), handlers.CreateGroup)
	api.Get("/groups/:name", handlers.GetGroup)
	api.Get("/groups/:name/feed", handlers.GetFeed)

	api.Post("/groups/:name/players", handlers.RegisterPlayer)
	api.Get("/groups/:name/players/:username/board", handlers.GetBoard)
	api.Get("/groups/:name/players/:username/gallery", handlers.GetGallery)
	api.Post("/groups/:name/players/:username/uploads", handlers.UploadProof)
	api.Post("/groups/:name/players/:username/submissions", handlers.CreateSubmission)
	api.Delete("/groups/:name/players/:username/submissions/:id", handlers.RemoveSubmission)

	// Admin routes
	adminGroup := api.Group("/groups/:name/admin")
	adminGroup.Post("/login", middleware.StrictRateLimitMiddleware(), admin.Login)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/submissions", admin.GetChallengeSubmissions)
	adminProtected.Put("/submissions/:id/approve", admin.ApproveSubmission)
	adminProtected.Put("/submissions/:id/reject", admin.RejectSubmission)

	// Live activity feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/feed/:name", websocket.New(handlers.FeedSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := getEnv("PORT", "3000")
	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("GAME_PASSWORD") == "" {
		log.Fatal("FATAL: GAME_PASSWORD must be set; group registration is gated on it")
	}
	if os.Getenv("ADMIN_PASSWORD") == "" && os.Getenv("ADMIN_PASSWORD_HASH") == "" {
		log.Fatal("FATAL: set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH for the challenge review panel")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
