package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mstgnz/posgate/handler"
	"github.com/mstgnz/posgate/infra/config"
	"github.com/mstgnz/posgate/infra/logger"
	"github.com/mstgnz/posgate/infra/middle"
	"github.com/mstgnz/posgate/infra/opensearch"
	"github.com/mstgnz/posgate/infra/response"
	"github.com/mstgnz/posgate/provider"
	"github.com/mstgnz/posgate/router"
)

var (
	PORT             string
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	// init conf
	_ = config.App()

	PORT = config.GetEnv("APP_PORT", "9999")

	// Initialize OpenSearch client and logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}

	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	cfg := config.GetAppConfig()

	// Secrets come from SQLite when a database path is configured,
	// otherwise from the environment.
	var secrets provider.SecretStore
	var sqliteStore *config.SQLiteSecretStore
	if cfg.SecretDBPath != "" {
		store, err := config.NewSQLiteSecretStore(cfg.SecretDBPath)
		if err != nil {
			logger.Fatal("Failed to open secret store", err)
		}
		defer store.Close()
		sqliteStore = store
		secrets = store
	} else {
		secrets = config.NewEnvSecretStore("")
	}

	// Register configured providers
	paymentService := provider.NewPaymentService()
	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv()

	for _, providerName := range providerConfig.GetAvailableProviders() {
		providerCfg, err := providerConfig.GetConfig(providerName)
		if err != nil {
			logger.Warn("Failed to get provider configuration", logger.LogContext{
				Provider: providerName,
				Fields:   map[string]any{"error": err.Error()},
			})
			continue
		}
		if err := paymentService.AddProvider(providerName, providerCfg, secrets); err != nil {
			logger.Error("Failed to register provider", err, logger.LogContext{Provider: providerName})
			continue
		}
		logger.Info("Provider registered", logger.LogContext{Provider: providerName})
	}

	paymentHandler := handler.NewPaymentHandler(paymentService, config.App().Validator, openSearchLogger)
	healthHandler := handler.NewHealthHandler(paymentService, sqliteStore)

	var logQuerier handler.SignatureLogQuerier
	if openSearchLogger != nil {
		logQuerier = openSearchLogger
	}
	logsHandler := handler.NewLogsHandler(logQuerier)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint (no auth required)
	r.Get("/health", healthHandler.CheckHealth)

	// Callback routes for bank gateways (no auth required, banks POST here)
	r.Route("/callback", func(r chi.Router) {
		r.HandleFunc("/{provider}", paymentHandler.HandleCallback)
	})

	// API routes
	router.Routes(r, paymentHandler, logsHandler)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Success: false, Message: "Not Found"})
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", PORT),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", PORT)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
