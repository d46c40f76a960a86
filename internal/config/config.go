package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Groq (OpenAI-compatible endpoint)
	GroqAPIKey      string
	GroqBaseURL     string
	RouterModel     string
	GenerationModel string
	SafetyModel     string

	// Pinecone
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeIndexName string

	// HuggingFace embeddings
	HFToken          string
	HFEmbeddingModel string

	// Tavily web search
	TavilyAPIKey string

	// Storage
	StoragePath string

	// Ingestion workers
	WorkerCount int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8000"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   mustGetEnv("JWT_SECRET"),

		GroqAPIKey:      getEnvOrDefault("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		RouterModel:     getEnvOrDefault("ROUTER_MODEL", "llama-3.3-70b-versatile"),
		GenerationModel: getEnvOrDefault("GENERATION_MODEL", "llama-3.3-70b-versatile"),
		SafetyModel:     getEnvOrDefault("SAFETY_MODEL", "llama-3.3-70b-versatile"),

		PineconeAPIKey:    getEnvOrDefault("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnvOrDefault("PINECONE_INDEX_HOST", ""),
		PineconeIndexName: getEnvOrDefault("PINECONE_INDEX_NAME", "medical-chatbot-index"),

		HFToken:          getEnvOrDefault("HF_TOKEN", ""),
		HFEmbeddingModel: getEnvOrDefault("HF_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),

		TavilyAPIKey: getEnvOrDefault("TAVILY_API_KEY", ""),

		StoragePath: getEnvOrDefault("STORAGE_PATH", "./uploads"),
		WorkerCount: getEnvAsIntOrDefault("INGESTION_WORKERS", 3),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
