package domain

import "errors"

// Domain errors.
var (
	ErrInvalidEmail   = errors.New("email invalide")
	ErrDuplicateEmail = errors.New("email déjà enregistré")
	ErrEmptyRegistry  = errors.New("aucun participant enregistré")
	ErrCorruptJournal = errors.New("journal des participants corrompu")
)
