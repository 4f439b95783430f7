// cmd/api/main.go
// Main entry point for the Random Coffee matchmaking API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkotelnikov/coffeematch-backend/internal/auth"
	"github.com/mkotelnikov/coffeematch-backend/internal/common/database"
	"github.com/mkotelnikov/coffeematch-backend/internal/config"
	"github.com/mkotelnikov/coffeematch-backend/internal/export"
	"github.com/mkotelnikov/coffeematch-backend/internal/matchmaking"
	"github.com/mkotelnikov/coffeematch-backend/internal/notify"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("Starting Random Coffee Matchmaking API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	log.Println("Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	// 3. Connect to PostgreSQL
	log.Println("Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()

	// 4. Connect to Redis (optional, enables the cross-process round lock)
	log.Println("Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable (%v), continuing without the round lock", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	} else {
		log.Println("Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("Step 5: Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// 6. Notification provider
	log.Println("Step 6: Initializing notification provider...")
	var sender notify.Sender
	switch cfg.NotifyProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, "Random Coffee")
		log.Println("Using SendGrid for notifications")
	case "twilio":
		sender = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		log.Println("Using Twilio for notifications")
	default:
		sender = notify.NewMockSender()
		log.Println("Using mock notification provider (development mode)")
	}
	dispatcher := notify.NewDispatcher(sender)

	// 7. Profile module
	log.Println("Step 7: Initializing profile module...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo, cfg)
	profileHandler := profile.NewHandler(profileService)

	// 8. Matchmaking module
	log.Println("Step 8: Initializing matchmaking module...")
	matchRepo := matchmaking.NewPostgresRepository(db)

	var locker matchmaking.RoundLocker
	if redisClient != nil {
		locker = matchmaking.NewRedisRoundLocker(redisClient, cfg.RoundLockTTL)
	}

	engine := matchmaking.NewEngine(matchRepo, profileRepo, dispatcher, locker, cfg)
	matchService := matchmaking.NewService(matchRepo, profileRepo, dispatcher, engine)
	adminService := matchmaking.NewAdminService(matchRepo, profileRepo, dispatcher)
	matchHandler := matchmaking.NewHandler(matchService, adminService)

	// 9. Export module
	log.Println("Step 9: Initializing export module...")
	storage, err := export.NewStorage(export.StorageConfig{
		UseS3:     cfg.UseS3,
		S3Bucket:  cfg.S3Bucket,
		AWSRegion: cfg.S3Region,
		LocalDir:  cfg.LocalExportDir,
	})
	if err != nil {
		log.Fatal("Failed to initialize export storage: ", err)
	}
	exportService := export.NewService(profileRepo, matchRepo, storage)
	exportHandler := export.NewHandler(exportService)

	// 10. Routes
	log.Println("Step 10: Setting up routes...")
	authMiddleware := auth.NewMiddleware(cfg)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	matchmaking.RegisterRoutes(router, matchHandler, authMiddleware)
	export.RegisterRoutes(router, exportHandler, authMiddleware)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 11. Round scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	scheduler := matchmaking.NewScheduler(matchService, cfg.RoundInterval)
	scheduler.Start(schedulerCtx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s (environment: %s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exited gracefully")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests with their status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS preflight and headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+auth.UserIDHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
