package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propfest-backend/chain"
	"propfest-backend/claim"
	"propfest-backend/config"
	"propfest-backend/handlers"
	"propfest-backend/middleware"
	"propfest-backend/storage"
	"propfest-backend/voucher"
)

func connectToDatabase(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the database!")
	return pool, nil
}

func connectToEthereum(rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum client: %w", err)
	}

	log.Println("Successfully connected to Ethereum node!")
	return client, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using default environment variables")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Unable to load configuration: %v\n", err)
	}

	// Database connection
	pool, err := connectToDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	// Ethereum client connection
	ethClient, err := connectToEthereum(cfg.RPCURL)
	if err != nil {
		log.Fatalf("Unable to connect to Ethereum node: %v\n", err)
	}
	defer ethClient.Close()

	// Voucher signing keypair, derived once at startup and shared by
	// issuer and verifier.
	signer, err := voucher.NewSigner(cfg.VoucherSigningKey)
	if err != nil {
		log.Fatalf("Unable to initialize voucher signer: %v\n", err)
	}
	log.Printf("Voucher verification key: %s\n", signer.PublicKeyHex())

	medalVault, err := chain.NewMedalVault(ethClient, cfg.MedalContract, cfg.ChainID, cfg.OperatorKey)
	if err != nil {
		log.Fatalf("Unable to initialize medal vault client: %v\n", err)
	}

	sessionStore := storage.NewSessionStore(pool)
	eventStore := storage.NewEventStore(pool)

	issuer := voucher.NewIssuer(signer, cfg.VoucherTTL())
	verifier := voucher.NewVerifier(signer, sessionStore)
	orchestrator := claim.NewOrchestrator(sessionStore, eventStore, medalVault, verifier)

	// Create handlers
	gameHandler := handlers.NewGameHandler(sessionStore, eventStore, issuer)
	voucherHandler := handlers.NewVoucherHandler(verifier)
	claimHandler := handlers.NewClaimHandler(orchestrator)
	eventHandler := handlers.NewEventHandler(eventStore)

	// Setup Gin
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:5173"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	claimLimiter := middleware.RateLimit(cfg.ClaimRatePerSecond, cfg.ClaimRateBurst)

	// API routes
	api := router.Group("/api")
	{
		// Event routes
		api.POST("/events", eventHandler.CreateEvent)
		api.GET("/events", eventHandler.GetEvents)
		api.GET("/events/:id", eventHandler.GetEvent)
		api.GET("/events/:id/sessions", gameHandler.GetEventSessions)

		// Game session routes
		api.POST("/game-sessions", gameHandler.SubmitSession)
		api.GET("/game-sessions/:id", gameHandler.GetSession)

		// Voucher and claim routes
		api.POST("/vouchers/verify", voucherHandler.Verify)
		api.POST("/rewards/prepare-claim", claimLimiter, claimHandler.PrepareClaim)
		api.POST("/rewards/complete-claim", claimLimiter, claimHandler.CompleteClaim)

		// Health check route
		api.GET("/test-db", func(c *gin.Context) {
			if err := pool.Ping(c); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed: " + err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "Database connection OK"})
		})
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	log.Printf("Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
