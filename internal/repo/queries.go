package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Queries bundelt de accountgebonden databasetoegang.
type Queries struct {
	db *pgxpool.Pool
}

// New maakt een Queries-instantie op de pool.
func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}

// GetProfileByEmail zoekt een profiel op e-mailadres (genormaliseerd naar lowercase).
func (q *Queries) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := q.db.QueryRow(ctx, `
		SELECT id, email, full_name, password_hash, role, is_active, created_at, updated_at
		FROM profiles
		WHERE lower(email) = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// GetProfileByID haalt een profiel op.
func (q *Queries) GetProfileByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := q.db.QueryRow(ctx, `
		SELECT id, email, full_name, password_hash, role, is_active, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// RepairProfile maakt een ontbrekende profielrij aan met de minst
// geprivilegieerde rol. Herstelt het gat tussen inlogidentiteit en
// profieltabel zonder speciale gevallen per gebruiker.
func (q *Queries) RepairProfile(ctx context.Context, id uuid.UUID, email *string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := q.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, password_hash, role)
		VALUES ($1, $2, '', $3)
		ON CONFLICT (id) DO UPDATE SET updated_at = now()
		RETURNING id, email, full_name, password_hash, role, is_active, created_at, updated_at
	`, id, email, RoleMedewerker).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// UpdateProfile werkt naam en e-mail bij.
func (q *Queries) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := q.db.Exec(ctx, `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    updated_at = now()
		WHERE id = $1
	`, id, fullName, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertRefreshToken slaat een nieuw refresh token op.
func (q *Queries) InsertRefreshToken(ctx context.Context, subject uuid.UUID, tokenHash string, expiresAt time.Time) (RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	t := RefreshToken{
		ID:        uuid.New(),
		Subject:   subject,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO refresh_tokens (id, subject, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, revoked
	`, t.ID, t.Subject, t.TokenHash, t.ExpiresAt).Scan(&t.CreatedAt, &t.Revoked)
	return t, err
}

// GetRefreshTokenByHash zoekt een refresh token op hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var t RefreshToken
	err := q.db.QueryRow(ctx, `
		SELECT id, subject, token_hash, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token_hash = $1
	`, tokenHash).Scan(&t.ID, &t.Subject, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.Revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return RefreshToken{}, ErrNotFound
	}
	return t, err
}

// RevokeRefreshToken markeert een token als ingetrokken.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := q.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, tokenHash)
	return err
}

// InvalidateOtherRefreshTokens trekt alle tokens van een subject in behalve de opgegeven hash.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := q.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE subject = $1 AND token_hash <> $2 AND NOT revoked
	`, subject, keepHash)
	return err
}
