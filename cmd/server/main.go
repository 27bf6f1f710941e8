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

	"hackhub/internal/api"
	"hackhub/internal/app/service"
	"hackhub/internal/common/security"
	"hackhub/internal/domain/repository"
	"hackhub/internal/platform/cache"
	"hackhub/internal/platform/config"
	"hackhub/internal/platform/database"
	"hackhub/internal/platform/metrics"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	database.Migrate()

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Register Metrics
	metrics.Register()

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	hackathonRepo := repository.NewPgHackathonRepository(database.DB)
	participantRepo := repository.NewPgParticipantRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	hackathonService := service.NewHackathonService(hackathonRepo, participantRepo, submissionRepo, userRepo)
	registrationService := service.NewRegistrationService(hackathonRepo, participantRepo)
	submissionService := service.NewSubmissionService(submissionRepo, participantRepo, hackathonRepo, userRepo)
	analyticsService := service.NewAnalyticsService(
		hackathonRepo, participantRepo, submissionRepo,
		cache.NewRedisStatsCache(cache.RDB),
		config.AppConfig.PlatformStatsCacheKey,
		config.AppConfig.PlatformStatsCacheTTL,
	)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, hackathonService, registrationService, submissionService, analyticsService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
