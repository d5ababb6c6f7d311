package repo

import (
	"time"

	"github.com/google/uuid"
)

// Rollen zoals opgeslagen in de profiles-tabel. De set is gesloten:
// alles buiten deze twee waarden valt terug op medewerker.
const (
	RoleMedewerker = "medewerker"
	RoleSuperAdmin = "super_admin"
)

// Profile is het gebruikersprofiel gekoppeld aan de inlogidentiteit.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	Email        *string    `json:"email"`
	FullName     *string    `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// RefreshToken modelleert de refresh_tokens-tabel.
type RefreshToken struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}
