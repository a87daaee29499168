package domain

import "errors"

// Errores centinela del dominio persona. Las capas superiores envuelven con
// fmt.Errorf("%w: ...") y mapean con errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTraitNotFound   = errors.New("trait not found")
	ErrTraitOutOfRange = errors.New("trait value out of range")
	ErrPersonaNotFound = errors.New("persona not found")
	ErrStoreFailure    = errors.New("persona store failure")
)
