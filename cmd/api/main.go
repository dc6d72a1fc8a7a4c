package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/smartspend/backend/internal/analytics"
	"github.com/smartspend/backend/internal/api/handlers"
	"github.com/smartspend/backend/internal/api/middleware"
	"github.com/smartspend/backend/internal/classify"
	"github.com/smartspend/backend/internal/config"
	"github.com/smartspend/backend/internal/ingest"
	"github.com/smartspend/backend/internal/logger"
	"github.com/smartspend/backend/internal/service"
	"github.com/smartspend/backend/internal/store"
)

func main() {
	// Parse command-line flags
	port := flag.String("port", "8080", "HTTP server port")
	flag.Parse()

	// Initialize logger and configuration
	log := logger.New()
	cfg := config.Load()

	if cfg.MongoURL == "" {
		log.Fatal().Msg("MONGO_URL is required")
	}

	ctx := context.Background()

	client, err := store.Connect(ctx, cfg.MongoURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	transactionStore := store.NewTransactionStore(client, cfg.DBName)
	insightStore := store.NewInsightStore(client, cfg.DBName)
	paymentStore := store.NewPaymentStore(client, cfg.DBName)

	// Classification stack
	classifierCfg := classify.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		AppURL:  cfg.OpenRouterAppURL,
		AppName: cfg.OpenRouterAppName,
		Timeout: cfg.OpenRouterTimeout,
	}
	cache := classify.NewCache(classify.DefaultCacheSize, classify.DefaultCacheTTL)
	classifier := classify.NewClassifier(classifierCfg, cache, log)
	enricher := classify.NewEnricher(classifier, log)
	if !classifier.Available() {
		log.Warn().Msg("OpenRouter not configured - AI classification disabled")
	}

	// Services
	parser := ingest.NewParser(log)
	transactionService := service.NewTransactionService(transactionStore, classifier, log)
	importService := service.NewImportService(parser, transactionStore, enricher, log)
	demoService := service.NewDemoService(transactionStore, transactionService, log)
	paymentService := service.NewPaymentService(paymentStore, transactionStore, log)

	var chat analytics.ChatCompleter
	if classifier.Available() {
		chat = classifier
	}
	insightGenerator := analytics.NewGenerator(chat, cfg.EmergencyFundMultiplier, log)

	// Handlers
	transactionsHandler := handlers.NewTransactionsHandler(transactionService, importService, demoService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(transactionStore, log)
	insightsHandler := handlers.NewInsightsHandler(transactionStore, insightStore, insightGenerator, log)
	paymentsHandler := handlers.NewPaymentsHandler(paymentService, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.Create(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/bulk", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.BulkCreate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/import/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/transactions/import/")
		if userID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		transactionsHandler.Import(w, r, userID)
	})

	mux.HandleFunc("/api/transactions/generate/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/transactions/generate/")
		if userID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		transactionsHandler.Generate(w, r, userID)
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if userID == "" || strings.Contains(userID, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		transactionsHandler.List(w, r, userID)
	})

	mux.HandleFunc("/api/analytics/spending-summary/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/analytics/spending-summary/")
		if userID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		analyticsHandler.SpendingSummary(w, r, userID)
	})

	mux.HandleFunc("/api/analytics/spending-trends/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/analytics/spending-trends/")
		if userID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		analyticsHandler.SpendingTrends(w, r, userID)
	})

	mux.HandleFunc("/api/ai/insights/", func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimPrefix(r.URL.Path, "/api/ai/insights/")
		if userID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		switch r.Method {
		case http.MethodPost:
			insightsHandler.Generate(w, r, userID)
		case http.MethodGet:
			insightsHandler.List(w, r, userID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/payments/upi-intent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			paymentsHandler.CreateIntent(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/payments/callback/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		paymentID := strings.TrimPrefix(r.URL.Path, "/api/payments/callback/")
		if paymentID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Payment ID is required")
			return
		}
		paymentsHandler.Callback(w, r, paymentID)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(cfg.CORSOrigins())(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("db", cfg.DBName).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
