package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"medichat-backend/internal/handlers"
	"medichat-backend/internal/middleware"
	"medichat-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	projectHandler *handlers.ProjectHandler,
	sessionHandler *handlers.SessionHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	widgetHandler *handlers.WidgetHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	// Chat rate limiter (30 req/min per IP): the chat endpoint is public.
	chatLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", adminHandler.Health)

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Chat (public: embedded widgets carry no credentials) ────
		r.Group(func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/chat/{projectID}", chatHandler.Ask)
		})

		// ──── Widget Instances (public) ────
		r.Route("/widget/sessions", func(r chi.Router) {
			r.Post("/", widgetHandler.Create)
			r.Get("/{instanceID}", widgetHandler.Get)
			r.Post("/{instanceID}/events", widgetHandler.Event)
			r.Delete("/{instanceID}", widgetHandler.Delete)
		})

		// ──── Agent Status (public) ────
		r.Get("/agents/status", projectHandler.AgentsStatus)

		// ──── Project Configuration ────
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/config", projectHandler.GetConfig)
			r.Post("/config", projectHandler.SaveConfig)
			r.Post("/upload-knowledge", projectHandler.UploadKnowledge)
			r.Get("/knowledge", projectHandler.ListKnowledge)
		})

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", sessionHandler.List)
			r.Get("/mine", sessionHandler.Mine)
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Delete("/{sessionID}", sessionHandler.Delete)
		})

		// ──── User Routes ────
		r.Route("/users", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.Me)
			r.Get("/", userHandler.List)
			r.Get("/{userID}", userHandler.Get)
			r.Delete("/{userID}", userHandler.Delete)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/stats", adminHandler.Stats)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
