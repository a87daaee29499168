package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-engine/internal/domain"
	"persona-engine/internal/repository"
)

// PersonaService coordina los casos de uso sobre personas: get-or-create,
// lectura estricta, mutacion de un rasgo, listado y busqueda de similares.
type PersonaService struct {
	logger   *zap.Logger
	personas repository.PersonaRepository
	mutator  TraitMutator
}

func NewPersonaService(logger *zap.Logger, personas repository.PersonaRepository) *PersonaService {
	return &PersonaService{
		logger:   logger,
		personas: personas,
		mutator:  DefaultTraitMutator,
	}
}

// GetOrCreate devuelve la persona del usuario; si no existe la crea con los
// valores por defecto y la persiste. Idempotente por user id: llamadas
// repetidas no escriben de nuevo ni cambian valores.
func (s *PersonaService) GetOrCreate(ctx context.Context, userID string) (*domain.Persona, error) {
	if s.personas == nil {
		return nil, errors.New("persona service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", domain.ErrInvalidArgument)
	}

	persona, err := s.personas.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if persona != nil {
		return persona, nil
	}

	persona = domain.NewDefaultPersona(userID)
	if err := s.personas.Save(ctx, userID, persona); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("persona created with defaults", zap.String("user_id", userID))
	}
	return persona, nil
}

// Get es la lectura estricta: una persona ausente es ErrPersonaNotFound y
// nunca dispara una creacion.
func (s *PersonaService) Get(ctx context.Context, userID string) (*domain.Persona, error) {
	if s.personas == nil {
		return nil, errors.New("persona service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", domain.ErrInvalidArgument)
	}

	persona, err := s.personas.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPersonaNotFound, userID)
	}
	return persona, nil
}

// UpdateTrait ejecuta el ciclo leer-mutar-guardar-releer. Si la mutacion
// falla no se persiste nada. El valor devuelto es el releido del store, que
// es el estado autoritativo, no el objeto mutado en memoria.
func (s *PersonaService) UpdateTrait(ctx context.Context, userID, trait string, value float64) (*domain.Persona, error) {
	if s.personas == nil {
		return nil, errors.New("persona service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(trait) == "" {
		return nil, fmt.Errorf("%w: trait name cannot be empty", domain.ErrInvalidArgument)
	}

	persona, err := s.personas.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPersonaNotFound, userID)
	}

	if _, err := s.mutator.UpdateTrait(persona, trait, value); err != nil {
		return nil, err
	}
	if err := s.personas.Save(ctx, userID, persona); err != nil {
		return nil, err
	}

	refreshed, err := s.personas.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPersonaNotFound, userID)
	}
	if s.logger != nil {
		s.logger.Info("trait updated",
			zap.String("user_id", userID),
			zap.String("trait", trait),
			zap.Float64("value", value))
	}
	return refreshed, nil
}

// List devuelve una pagina de personas en orden de user id.
func (s *PersonaService) List(ctx context.Context, limit, offset int) ([]domain.Persona, error) {
	if s.personas == nil {
		return nil, errors.New("persona service not configured")
	}
	return s.personas.List(ctx, limit, offset)
}

// FindSimilar devuelve las personas mas cercanas a la del usuario indicado
// en el espacio de rasgos. La referencia debe existir.
func (s *PersonaService) FindSimilar(ctx context.Context, userID string, limit int) ([]domain.Persona, error) {
	if s.personas == nil {
		return nil, errors.New("persona service not configured")
	}

	persona, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.personas.FindSimilar(ctx, persona, limit)
}
