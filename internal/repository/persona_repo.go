package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"persona-engine/internal/domain"
)

// Valores por defecto de paginacion y de busqueda de similares.
const (
	DefaultListLimit    = 100
	DefaultSimilarLimit = 10
)

// PersonaRepository define el contrato de persistencia de personas.
// Get devuelve (nil, nil) cuando la persona no existe: la ausencia no es error.
// Save es un upsert incondicional (inserta o sobreescribe completo).
// List pagina en orden ascendente de user_id en todos los backends.
type PersonaRepository interface {
	Get(ctx context.Context, userID string) (*domain.Persona, error)
	Save(ctx context.Context, userID string, persona *domain.Persona) error
	List(ctx context.Context, limit, offset int) ([]domain.Persona, error)
	FindSimilar(ctx context.Context, ref *domain.Persona, limit int) ([]domain.Persona, error)
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id cannot be empty", domain.ErrInvalidArgument)
	}
	return nil
}

func validateSaveArgs(userID string, persona *domain.Persona) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if persona == nil {
		return fmt.Errorf("%w: persona cannot be nil", domain.ErrInvalidArgument)
	}
	if err := persona.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type PgPersonaRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonaRepository(pool *pgxpool.Pool) *PgPersonaRepository {
	return &PgPersonaRepository{pool: pool}
}

func (r *PgPersonaRepository) Get(ctx context.Context, userID string) (*domain.Persona, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		WHERE user_id = $1
	`

	var p domain.Persona
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Openness,
		&p.Conscientiousness,
		&p.Extraversion,
		&p.Agreeableness,
		&p.Neuroticism,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get persona: %v", domain.ErrStoreFailure, err)
	}
	return &p, nil
}

func (r *PgPersonaRepository) Save(ctx context.Context, userID string, persona *domain.Persona) error {
	if err := validateSaveArgs(userID, persona); err != nil {
		return err
	}
	const query = `
		INSERT INTO personas (user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism, trait_vec)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			openness = EXCLUDED.openness,
			conscientiousness = EXCLUDED.conscientiousness,
			extraversion = EXCLUDED.extraversion,
			agreeableness = EXCLUDED.agreeableness,
			neuroticism = EXCLUDED.neuroticism,
			trait_vec = EXCLUDED.trait_vec
	`

	_, err := r.pool.Exec(ctx, query,
		userID,
		persona.Openness,
		persona.Conscientiousness,
		persona.Extraversion,
		persona.Agreeableness,
		persona.Neuroticism,
		traitVector(persona),
	)
	if err != nil {
		return fmt.Errorf("%w: save persona: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

func (r *PgPersonaRepository) List(ctx context.Context, limit, offset int) ([]domain.Persona, error) {
	limit, offset = normalizePage(limit, offset)
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		ORDER BY user_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list personas: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	personas, err := scanPersonas(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: list personas: %v", domain.ErrStoreFailure, err)
	}
	return personas, nil
}

func (r *PgPersonaRepository) FindSimilar(ctx context.Context, ref *domain.Persona, limit int) ([]domain.Persona, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: reference persona cannot be nil", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		WHERE user_id <> $1
		ORDER BY trait_vec <-> $2, user_id
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, ref.UserID, traitVector(ref), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar personas: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	personas, err := scanPersonas(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar personas: %v", domain.ErrStoreFailure, err)
	}
	return personas, nil
}

// traitVector proyecta los cinco rasgos a un vector de dimension 5 para la
// distancia L2 de pgvector.
func traitVector(p *domain.Persona) pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(p.Openness),
		float32(p.Conscientiousness),
		float32(p.Extraversion),
		float32(p.Agreeableness),
		float32(p.Neuroticism),
	})
}

func scanPersonas(rows pgxRows) ([]domain.Persona, error) {
	var personas []domain.Persona
	for rows.Next() {
		var p domain.Persona
		if err := rows.Scan(
			&p.UserID,
			&p.Openness,
			&p.Conscientiousness,
			&p.Extraversion,
			&p.Agreeableness,
			&p.Neuroticism,
		); err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return personas, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
