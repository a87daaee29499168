package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"persona-engine/internal/config"
	"persona-engine/internal/db"
	apihttp "persona-engine/internal/http"
	"persona-engine/internal/repository"
	"persona-engine/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	// El backend de personas se elige por el esquema de DATABASE_URL.
	var personaRepo repository.PersonaRepository
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		personaRepo = repository.NewPgPersonaRepository(pool)
		logger.Info("persona store ready", zap.String("backend", "postgres"))
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite://"):
		path := strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
		sqliteRepo, err := repository.OpenSQLitePersonaRepository(path)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		defer sqliteRepo.Close()
		personaRepo = sqliteRepo
		logger.Info("persona store ready", zap.String("backend", "sqlite"), zap.String("path", path))
	case cfg.DatabaseURL == "memory" || cfg.DatabaseURL == "memory://":
		personaRepo = repository.NewMemoryPersonaRepository()
		logger.Info("persona store ready", zap.String("backend", "memory"))
	default:
		logger.Fatal("unsupported DATABASE_URL scheme")
	}

	var limiter service.RateLimiter
	if cfg.RateLimitMax > 0 {
		limiter = service.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := redisClient.Ping(ctxPing).Err(); err != nil {
				logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
			} else {
				limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
			}
			cancel()
		}
	}

	var tokens *service.TokenService
	if cfg.AuthJWTSecret != "" {
		tokens = service.NewTokenService(cfg.AuthJWTSecret, cfg.AuthJWTIssuer)
	} else {
		logger.Warn("auth secret not configured, api is open")
	}

	personaSvc := service.NewPersonaService(logger, personaRepo)
	personaHandler := apihttp.NewPersonaHandler(logger, personaSvc)
	router := apihttp.NewRouter(logger, personaHandler, apihttp.RouterConfig{
		Version:     cfg.Version,
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      tokens,
		Limiter:     limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("version", cfg.Version))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
