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

	"medichat-backend/internal/agents"
	"medichat-backend/internal/config"
	"medichat-backend/internal/database"
	"medichat-backend/internal/handlers"
	"medichat-backend/internal/middleware"
	"medichat-backend/internal/repository"
	"medichat-backend/internal/router"
	"medichat-backend/internal/services"
	"medichat-backend/internal/websocket"
	"medichat-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting MediChat Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	projectRepo := repository.NewProjectRepo(pool)
	knowledgeRepo := repository.NewKnowledgeRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize LLM Client ────
	llmService, err := services.NewLLMService(
		cfg.GroqAPIKey,
		cfg.GroqBaseURL,
		cfg.RouterModel,
		cfg.GenerationModel,
		cfg.SafetyModel,
		5,
	)
	if err != nil {
		log.Fatalf("✗ LLM client initialization failed: %v", err)
	}
	log.Println("✓ LLM client initialized")

	// ──── Step 6: Initialize Agent Pipeline ────
	embedder := agents.NewEmbeddingClient(cfg.HFToken, cfg.HFEmbeddingModel)
	pinecone := agents.NewPineconeClient(cfg.PineconeAPIKey, cfg.PineconeIndexHost)
	ragAgent := agents.NewRAGAgent(embedder, pinecone)
	webAgent := agents.NewWebSearchAgent(cfg.TavilyAPIKey)
	routerAgent := agents.NewRouter(llmService)
	log.Println("✓ Agent pipeline initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	fileExtractService := services.NewFileExtractService()
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(sessionRepo, projectRepo, llmService, routerAgent, ragAgent, webAgent, redisClients.Queue)
	projectHandler := handlers.NewProjectHandler(projectRepo, knowledgeRepo, jobRepo, fileExtractService, ragAgent, webAgent, redisClients.Queue, cfg.StoragePath)
	sessionHandler := handlers.NewSessionHandler(sessionRepo)
	userHandler := handlers.NewUserHandler(userRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, sessionRepo, knowledgeRepo, pool, redisClients.Queue, ragAgent, webAgent, cfg.Env)
	widgetHandler := handlers.NewWidgetHandler()

	// ──── Step 7: Start Ingestion Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		ragAgent,
		fileExtractService,
		jobRepo,
		knowledgeRepo,
		cfg.WorkerCount,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 8: Start WebSocket Hub ────
	hubCtx, hubCancel := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	go wsHub.Run(hubCtx, handlers.ActivityChannel)
	log.Println("✓ WebSocket hub started")

	// ──── Step 9: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		chatHandler,
		projectHandler,
		sessionHandler,
		userHandler,
		adminHandler,
		widgetHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		hubCancel()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MediChat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
