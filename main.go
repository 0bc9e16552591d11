package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tutti-frutti-service/handlers"
	"tutti-frutti-service/middleware"
	"tutti-frutti-service/models"
	"tutti-frutti-service/services"
	"tutti-frutti-service/store"
	"tutti-frutti-service/utils"
	"tutti-frutti-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB, enough for tournament photos
	})

	// 🔐 GLOBAL: only Gateway requests allowed (webhook paths exempt — the
	// provider authenticates those with its HMAC signature)
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.TournamentUser{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.Payment{},
		&models.AdminEarnings{},
		&models.Game{},
		&models.PlayerAnswer{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	mpAccessToken := os.Getenv("MP_ACCESS_TOKEN")
	if mpAccessToken == "" {
		log.Fatal("MP_ACCESS_TOKEN environment variable not set")
	}
	webhookSecret := os.Getenv("MP_WEBHOOK_SECRET")
	if webhookSecret == "" {
		// Keep booting: the webhook handler fails closed with a 500 until
		// the secret is configured.
		log.Println("⚠️  MP_WEBHOOK_SECRET not set — webhook notifications will be rejected")
	}
	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		log.Fatal("PUBLIC_BASE_URL environment variable not set")
	}

	mpClient := services.NewMercadoPagoClient(os.Getenv("MP_BASE_URL"), mpAccessToken, publicBaseURL)

	dataStore := store.NewGormStore(db)
	earningsService := services.NewEarningsService(dataStore)
	webhookService := services.NewWebhookService(dataStore, mpClient, earningsService, webhookSecret)
	tournamentService := services.NewTournamentService(db)
	paymentService := services.NewPaymentService(db, mpClient)
	gameService := services.NewGameService(db)

	// --- Profile sync from the Identity & Profile Store ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("SERVICE_TOKEN environment variable not set")
	}
	syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	earningsService.StartReconcileSweep()

	handlers.SetupWebhookRoutes(app, webhookService)
	handlers.SetupTournamentRoutes(app, tournamentService, gameService)
	handlers.SetupPaymentRoutes(app, paymentService)
	handlers.SetupEarningsRoutes(app, earningsService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile sync worker running")
	log.Println("✅ Earnings reconcile sweep running (every 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
