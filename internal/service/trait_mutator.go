package service

import (
	"fmt"

	"persona-engine/internal/domain"
)

// TraitMutator encapsula la mutacion de un rasgo con rollback a la pre-imagen.
type TraitMutator struct{}

// DefaultTraitMutator permite uso directo sin instanciar.
var DefaultTraitMutator = TraitMutator{}

// UpdateTrait escribe value en el rasgo indicado y revalida la persona
// completa. Si la validacion falla restaura el valor previo: el llamador
// nunca observa una persona fuera de rango. Devuelve la misma instancia
// mutada, no una copia.
func (TraitMutator) UpdateTrait(p *domain.Persona, trait string, value float64) (*domain.Persona, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: persona cannot be nil", domain.ErrInvalidArgument)
	}
	prev, ok := p.TraitValue(trait)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTraitNotFound, trait)
	}
	p.SetTrait(trait, value)
	if err := p.Validate(); err != nil {
		p.SetTrait(trait, prev)
		return nil, err
	}
	return p, nil
}
