package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"persona-engine/internal/domain"
)

// MemoryPersonaRepository guarda personas en un mapa protegido por un unico
// mutex. Guarda y devuelve COPIAS: mutar una persona devuelta no toca el
// registro hasta el proximo Save. Pensado para tests y ejecucion en un solo
// proceso; el contenido se pierde al reiniciar.
type MemoryPersonaRepository struct {
	mu    sync.Mutex
	items map[string]domain.Persona
}

func NewMemoryPersonaRepository() *MemoryPersonaRepository {
	return &MemoryPersonaRepository{items: make(map[string]domain.Persona)}
}

func (r *MemoryPersonaRepository) Get(ctx context.Context, userID string) (*domain.Persona, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (r *MemoryPersonaRepository) Save(ctx context.Context, userID string, persona *domain.Persona) error {
	if err := validateSaveArgs(userID, persona); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *persona
	stored.UserID = userID
	r.items[userID] = stored
	return nil
}

func (r *MemoryPersonaRepository) List(ctx context.Context, limit, offset int) ([]domain.Persona, error) {
	limit, offset = normalizePage(limit, offset)
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	personas := make([]domain.Persona, 0, end-offset)
	for _, id := range ids[offset:end] {
		personas = append(personas, r.items[id])
	}
	return personas, nil
}

func (r *MemoryPersonaRepository) FindSimilar(ctx context.Context, ref *domain.Persona, limit int) ([]domain.Persona, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: reference persona cannot be nil", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	type scored struct {
		persona  domain.Persona
		distance float64
	}
	candidates := make([]scored, 0, len(r.items))
	for id, p := range r.items {
		if id == ref.UserID {
			continue
		}
		candidates = append(candidates, scored{persona: p, distance: traitDistance(ref, &p)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].persona.UserID < candidates[j].persona.UserID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	personas := make([]domain.Persona, 0, len(candidates))
	for _, c := range candidates {
		personas = append(personas, c.persona)
	}
	return personas, nil
}

// traitDistance calcula la distancia L2 al cuadrado en el espacio de cinco
// rasgos. Ordena igual que el operador <-> de pgvector.
func traitDistance(a, b *domain.Persona) float64 {
	var sum float64
	for _, name := range domain.TraitNames {
		av, _ := a.TraitValue(name)
		bv, _ := b.TraitValue(name)
		d := av - bv
		sum += d * d
	}
	return sum
}
