package domain

import (
	"fmt"
	"math"
	"strings"
)

// Nombres publicos de los cinco rasgos del modelo Big Five.
const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// Limites del rango cerrado de cada rasgo y valor neutral por defecto.
const (
	MinTraitValue     = 1.0
	MaxTraitValue     = 5.0
	DefaultTraitValue = 3.0
)

// TraitNames lista los rasgos en orden canonico.
var TraitNames = []string{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

// Persona es el perfil de personalidad de un usuario. Cada rasgo vive en el
// rango cerrado [1.0, 5.0]; una Persona observable siempre cumple ese invariante.
type Persona struct {
	UserID            string  `json:"user_id"`
	Openness          float64 `json:"openness"`          // Creatividad vs. Pragmatismo
	Conscientiousness float64 `json:"conscientiousness"` // Orden vs. Caos
	Extraversion      float64 `json:"extraversion"`      // Energia social
	Agreeableness     float64 `json:"agreeableness"`     // Amabilidad
	Neuroticism       float64 `json:"neuroticism"`       // Estabilidad emocional (inversa)
}

type traitAccessor struct {
	get func(p *Persona) float64
	set func(p *Persona, v float64)
}

// Tabla fija de accesores por nombre publico. Sin reflection: el set de rasgos
// es cerrado y conocido en compilacion.
var traitAccessors = map[string]traitAccessor{
	TraitOpenness: {
		get: func(p *Persona) float64 { return p.Openness },
		set: func(p *Persona, v float64) { p.Openness = v },
	},
	TraitConscientiousness: {
		get: func(p *Persona) float64 { return p.Conscientiousness },
		set: func(p *Persona, v float64) { p.Conscientiousness = v },
	},
	TraitExtraversion: {
		get: func(p *Persona) float64 { return p.Extraversion },
		set: func(p *Persona, v float64) { p.Extraversion = v },
	},
	TraitAgreeableness: {
		get: func(p *Persona) float64 { return p.Agreeableness },
		set: func(p *Persona, v float64) { p.Agreeableness = v },
	},
	TraitNeuroticism: {
		get: func(p *Persona) float64 { return p.Neuroticism },
		set: func(p *Persona, v float64) { p.Neuroticism = v },
	},
}

// NewDefaultPersona crea una persona con los cinco rasgos en el valor neutral.
func NewDefaultPersona(userID string) *Persona {
	return &Persona{
		UserID:            userID,
		Openness:          DefaultTraitValue,
		Conscientiousness: DefaultTraitValue,
		Extraversion:      DefaultTraitValue,
		Agreeableness:     DefaultTraitValue,
		Neuroticism:       DefaultTraitValue,
	}
}

// NewPersona crea una persona con valores explicitos y la valida de inmediato,
// asi nunca se observa una instancia fuera de rango salida del constructor.
func NewPersona(userID string, openness, conscientiousness, extraversion, agreeableness, neuroticism float64) (*Persona, error) {
	p := &Persona{
		UserID:            userID,
		Openness:          openness,
		Conscientiousness: conscientiousness,
		Extraversion:      extraversion,
		Agreeableness:     agreeableness,
		Neuroticism:       neuroticism,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate revisa los cinco rasgos y acumula TODAS las violaciones en un solo
// error, no solo la primera. NaN e infinitos cuentan como violacion.
func (p *Persona) Validate() error {
	var violations []string
	for _, name := range TraitNames {
		v := traitAccessors[name].get(p)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			violations = append(violations, fmt.Sprintf("%s (%v) must be a finite number", name, v))
		case v < MinTraitValue || v > MaxTraitValue:
			violations = append(violations, fmt.Sprintf("%s (%g) must be between %.1f and %.1f",
				name, v, MinTraitValue, MaxTraitValue))
		}
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrTraitOutOfRange, strings.Join(violations, "; "))
	}
	return nil
}

// TraitValue lee un rasgo por su nombre publico; false si el nombre no existe.
func (p *Persona) TraitValue(name string) (float64, bool) {
	acc, ok := traitAccessors[name]
	if !ok {
		return 0, false
	}
	return acc.get(p), true
}

// SetTrait escribe un rasgo por nombre SIN validar; false si el nombre no
// existe. La mutacion con invariante pasa por el TraitMutator del servicio.
func (p *Persona) SetTrait(name string, value float64) bool {
	acc, ok := traitAccessors[name]
	if !ok {
		return false
	}
	acc.set(p, value)
	return true
}

// ToRecord proyecta la persona a un mapa plano clave/valor para transporte.
// Incluye user_id solo cuando esta presente. El mapa es una copia: mutarlo
// nunca afecta a la entidad.
func (p *Persona) ToRecord() map[string]any {
	record := map[string]any{
		TraitOpenness:          p.Openness,
		TraitConscientiousness: p.Conscientiousness,
		TraitExtraversion:      p.Extraversion,
		TraitAgreeableness:     p.Agreeableness,
		TraitNeuroticism:       p.Neuroticism,
	}
	if p.UserID != "" {
		record["user_id"] = p.UserID
	}
	return record
}
