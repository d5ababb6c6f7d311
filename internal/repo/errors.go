package repo

import "errors"

var (
	// ErrNotFound wordt teruggegeven wanneer geen rij gevonden is.
	ErrNotFound = errors.New("rij niet gevonden")
)
