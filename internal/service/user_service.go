package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jeffreasy/MIC-Registratie/internal/auth"
	"github.com/Jeffreasy/MIC-Registratie/internal/db"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
)

var (
	// ErrEmailTaken: e-mailadres is al in gebruik.
	ErrEmailTaken = errors.New("e-mailadres is al in gebruik")
	// ErrInvalidRole: onbekende rol.
	ErrInvalidRole = errors.New("ongeldige rol")
	// ErrWeakPassword: wachtwoord voldoet niet aan de minimumeisen.
	ErrWeakPassword = errors.New("wachtwoord moet minimaal 8 tekens zijn")
)

// UserService beheert accounts. Accounts worden alleen door beheerders
// aangemaakt; er is geen zelfregistratie.
type UserService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{pool: pool}
}

// CreateUser maakt een account met wachtwoord en rol aan, in één
// transactie zodat er nooit een half profiel ontstaat.
func (s *UserService) CreateUser(ctx context.Context, email, password, fullName, role string) (repo.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return repo.Profile{}, errors.New("e-mailadres is verplicht")
	}
	if len(password) < 8 {
		return repo.Profile{}, ErrWeakPassword
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = repo.RoleMedewerker
	}
	if role != repo.RoleMedewerker && role != repo.RoleSuperAdmin {
		return repo.Profile{}, ErrInvalidRole
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return repo.Profile{}, err
	}

	var profile repo.Profile
	err = db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO profiles (id, email, full_name, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, email, full_name, password_hash, role, is_active, created_at, updated_at
		`, uuid.New(), email, nullableString(fullName), hash, role).Scan(
			&profile.ID, &profile.Email, &profile.FullName, &profile.PasswordHash,
			&profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.UpdatedAt,
		)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.Profile{}, ErrEmailTaken
		}
		return repo.Profile{}, err
	}

	return profile, nil
}

// ResetPassword overschrijft het wachtwoord van een account op
// e-mailadres en trekt alle lopende sessies in.
func (s *UserService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	hash, err := auth.Hash(newPassword)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			UPDATE profiles SET password_hash = $2, updated_at = now()
			WHERE lower(email) = $1
			RETURNING id
		`, email, hash).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE refresh_tokens SET revoked = TRUE
			WHERE subject = $1 AND NOT revoked
		`, id)
		return err
	})
}

func nullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
