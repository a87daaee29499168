package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-engine/internal/service"
)

const requestIDKey = "request_id"

// RouterConfig agrupa las opciones del router que vienen de la configuracion.
// Tokens en nil deja la API abierta; Limiter en nil desactiva el rate limiting.
type RouterConfig struct {
	Version     string
	CORSOrigins []string
	Tokens      *service.TokenService
	Limiter     service.RateLimiter
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, personas *PersonaHandler, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: request id, logging, recovery, CORS y JSON content-type.
	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(cfg.CORSOrigins),
		jsonContentTypeMiddleware(),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "persona-engine",
			"version": cfg.Version,
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Unix(),
		})
	})

	api := r.Group("/api")
	if cfg.Limiter != nil {
		api.Use(rateLimitMiddleware(cfg.Limiter))
	}
	if cfg.Tokens != nil {
		api.Use(BearerAuthMiddleware(cfg.Tokens))
	}

	group := api.Group("/personas")
	group.POST("", personas.CreatePersona)
	group.GET("", personas.ListPersonas)
	group.GET("/:user_id", personas.GetPersona)
	group.PUT("/:user_id", personas.UpdateTrait)
	group.GET("/:user_id/similar", personas.SimilarPersonas)

	return r
}

// requestIDMiddleware asigna un id unico por request y lo propaga en la
// respuesta. Respeta el X-Request-ID entrante si viene de un proxy.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// corsMiddleware habilita CORS para los origins configurados.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// gin-contrib/cors no admite AllowAllOrigins junto con credenciales.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware corta con 429 cuando el cliente excede la ventana
// permitida.
func rateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
