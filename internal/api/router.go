package api

import (
	"net/http"
	"time"

	"hackhub/internal/api/handler"
	"hackhub/internal/app/service"
	"hackhub/internal/common/security"
	"hackhub/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func NewRouter(
	authService *service.AuthService,
	hackathonService *service.HackathonService,
	registrationService *service.RegistrationService,
	submissionService *service.SubmissionService,
	analyticsService *service.AnalyticsService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// Verifies the "Authorization: Bearer T" token and puts claims in context.
	// Routes that need an identity additionally apply middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		hackathonHandler := handler.NewHackathonHandler(hackathonService, registrationService)
		v1.Route("/hackathons", hackathonHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
		v1.Route("/analytics", analyticsHandler.RegisterRoutes)
	})

	return r
}
