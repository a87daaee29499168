package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-engine/internal/domain"
	"persona-engine/internal/repository"
	"persona-engine/internal/service"
)

// PersonaHandler mantiene dependencias para los endpoints de personas.
type PersonaHandler struct {
	logger   *zap.Logger
	personas *service.PersonaService
}

// NewPersonaHandler crea una instancia de PersonaHandler.
func NewPersonaHandler(logger *zap.Logger, personas *service.PersonaService) *PersonaHandler {
	return &PersonaHandler{
		logger:   logger,
		personas: personas,
	}
}

// CreatePersona maneja POST /api/personas. Devuelve la persona existente o
// la crea con valores por defecto; responde 201 en ambos casos.
func (h *PersonaHandler) CreatePersona(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create persona request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	persona, err := h.personas.GetOrCreate(c.Request.Context(), req.UserID)
	if err != nil {
		h.respondError(c, err, "could not create persona")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"persona": persona.ToRecord()})
}

// GetPersona maneja GET /api/personas/:user_id. Lectura estricta: nunca crea.
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	persona, err := h.personas.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err, "could not fetch persona")
		return
	}

	c.JSON(http.StatusOK, gin.H{"persona": persona.ToRecord()})
}

// UpdateTrait maneja PUT /api/personas/:user_id y devuelve la persona releida
// del store tras la escritura.
func (h *PersonaHandler) UpdateTrait(c *gin.Context) {
	// Value es puntero: 0 debe llegar al chequeo de rango, no morir en el binding.
	var req struct {
		Trait string   `json:"trait" binding:"required"`
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update trait request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.Param("user_id")
	persona, err := h.personas.UpdateTrait(c.Request.Context(), userID, req.Trait, *req.Value)
	if err != nil {
		h.respondError(c, err, "could not update trait")
		return
	}

	if subject, ok := GetAuthSubject(c); ok {
		h.logger.Info("trait updated via api",
			zap.String("user_id", userID),
			zap.String("trait", req.Trait),
			zap.String("subject", subject),
		)
	}

	c.JSON(http.StatusOK, gin.H{"persona": persona.ToRecord()})
}

// ListPersonas maneja GET /api/personas con paginacion limit/offset.
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultListLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	personas, err := h.personas.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err, "could not list personas")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"personas": personaRecords(personas),
		"limit":    limit,
		"offset":   offset,
	})
}

// SimilarPersonas maneja GET /api/personas/:user_id/similar y devuelve las
// personas mas cercanas en el espacio de rasgos.
func (h *PersonaHandler) SimilarPersonas(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultSimilarLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	personas, err := h.personas.FindSimilar(c.Request.Context(), c.Param("user_id"), limit)
	if err != nil {
		h.respondError(c, err, "could not find similar personas")
		return
	}

	c.JSON(http.StatusOK, gin.H{"personas": personaRecords(personas)})
}

func personaRecords(personas []domain.Persona) []map[string]any {
	records := make([]map[string]any, 0, len(personas))
	for i := range personas {
		records = append(records, personas[i].ToRecord())
	}
	return records
}

// respondError mapea el error de dominio al status HTTP. El detalle solo se
// expone en errores del cliente; las fallas internas van al log.
func (h *PersonaHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrTraitNotFound),
		errors.Is(err, domain.ErrTraitOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPersonaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
