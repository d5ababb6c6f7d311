package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Jeffreasy/MIC-Registratie/internal/auth"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
)

var (
	// ErrInvalidCredentials: e-mail of wachtwoord klopt niet.
	ErrInvalidCredentials = errors.New("ongeldige inloggegevens")
	// ErrAccountDisabled: account is gedeactiveerd.
	ErrAccountDisabled = errors.New("account gedeactiveerd")
	// ErrRefreshInvalid: refresh token is ongeldig of verlopen.
	ErrRefreshInvalid = errors.New("refresh token ongeldig")
)

type authRepository interface {
	GetProfileByEmail(ctx context.Context, email string) (repo.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (repo.Profile, error)
	RepairProfile(ctx context.Context, id uuid.UUID, email *string) (repo.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) error
	InsertRefreshToken(ctx context.Context, subject uuid.UUID, tokenHash string, expiresAt time.Time) (repo.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService bundelt inloggen, sessies en profielbeheer.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService maakt de service; er is geen andere initialisatie,
// alles wat de service nodig heeft komt hier expliciet binnen.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT geeft de tokenmanager, nodig voor de auth-middleware.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult is het resultaat van een geslaagde login of refresh.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Role          string
	Profile       UserProfile
	RefreshHash   string
	RefreshExpiry time.Time
}

// UserProfile is het profiel zoals de frontend het ontvangt.
type UserProfile struct {
	ID       string  `json:"id"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

func profileView(p repo.Profile) UserProfile {
	return UserProfile{
		ID:       p.ID.String(),
		Email:    p.Email,
		FullName: p.FullName,
		Role:     normalizeRole(p.Role),
	}
}

// normalizeRole dwingt een geldige rol af. Alles wat geen bekende rol
// is wordt medewerker; de terugval is dus altijd de minst
// geprivilegieerde rol.
func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case repo.RoleSuperAdmin:
		return repo.RoleSuperAdmin
	default:
		return repo.RoleMedewerker
	}
}

// Login controleert de inloggegevens en start een sessie.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: onbekend e-mailadres")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, profile.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: wachtwoordverificatie mislukt")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: wachtwoord onjuist")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, profile)
}

func (s *AuthService) startSession(ctx context.Context, profile repo.Profile) (*LoginResult, error) {
	if !profile.IsActive {
		return nil, ErrAccountDisabled
	}

	role := normalizeRole(profile.Role)
	token, _, err := s.jwt.GenerateAccessToken(profile.ID.String(), role)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, profile.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       profile.ID,
		Role:          role,
		Profile:       profileView(profile),
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// ResolveProfile haalt het profiel van een ingelogde identiteit op.
// Een ontbrekende profielrij wordt ter plekke hersteld met de rol
// medewerker, zodat inloggen nooit strandt op een ontbrekende rij en
// de terugval nooit rechten toekent.
func (s *AuthService) ResolveProfile(ctx context.Context, subject uuid.UUID) (repo.Profile, error) {
	profile, err := s.repo.GetProfileByID(ctx, subject)
	if errors.Is(err, repo.ErrNotFound) {
		log.Warn().Str("subject", subject.String()).Msg("profielrij ontbreekt, wordt hersteld")
		return s.repo.RepairProfile(ctx, subject, nil)
	}
	return profile, err
}

// Refresh wisselt een geldig refresh token in voor een nieuw tokenpaar.
// Het oude token wordt ingetrokken (rotatie).
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoked || time.Now().UTC().After(record.ExpiresAt) {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	profile, err := s.ResolveProfile(ctx, record.Subject)
	if err != nil {
		return nil, err
	}

	result, err := s.startSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout trekt het huidige refresh token in.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe geeft het profiel van de ingelogde gebruiker.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (UserProfile, error) {
	profile, err := s.ResolveProfile(ctx, subject)
	if err != nil {
		return UserProfile{}, err
	}
	return profileView(profile), nil
}

// UpdateMe werkt naam en e-mail van de ingelogde gebruiker bij.
func (s *AuthService) UpdateMe(ctx context.Context, subject uuid.UUID, fullName, email *string) (UserProfile, error) {
	if err := s.repo.UpdateProfile(ctx, subject, fullName, email); err != nil {
		return UserProfile{}, err
	}
	return s.GetMe(ctx, subject)
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	if _, err := s.repo.InsertRefreshToken(ctx, subject, hash, expires); err != nil {
		return err
	}

	// Eén actieve sessie per gebruiker; oudere tokens vervallen.
	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(hash), "active", time.Until(expires)).Err()
}
