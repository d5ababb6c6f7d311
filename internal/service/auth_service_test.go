package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Jeffreasy/MIC-Registratie/internal/auth"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
)

type stubAuthRepo struct {
	profiles       map[uuid.UUID]repo.Profile
	byEmail        map[string]repo.Profile
	tokens         map[string]repo.RefreshToken
	repaired       bool
	revokedHashes  []string
	insertedHashes []string
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		profiles: make(map[uuid.UUID]repo.Profile),
		byEmail:  make(map[string]repo.Profile),
		tokens:   make(map[string]repo.RefreshToken),
	}
}

func (s *stubAuthRepo) addProfile(p repo.Profile) {
	s.profiles[p.ID] = p
	if p.Email != nil {
		s.byEmail[*p.Email] = p
	}
}

func (s *stubAuthRepo) GetProfileByEmail(ctx context.Context, email string) (repo.Profile, error) {
	p, ok := s.byEmail[email]
	if !ok {
		return repo.Profile{}, repo.ErrNotFound
	}
	return p, nil
}

func (s *stubAuthRepo) GetProfileByID(ctx context.Context, id uuid.UUID) (repo.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return repo.Profile{}, repo.ErrNotFound
	}
	return p, nil
}

func (s *stubAuthRepo) RepairProfile(ctx context.Context, id uuid.UUID, email *string) (repo.Profile, error) {
	s.repaired = true
	p := repo.Profile{ID: id, Email: email, Role: repo.RoleMedewerker, IsActive: true}
	s.profiles[id] = p
	return p, nil
}

func (s *stubAuthRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) error {
	p, ok := s.profiles[id]
	if !ok {
		return repo.ErrNotFound
	}
	if fullName != nil {
		p.FullName = fullName
	}
	if email != nil {
		p.Email = email
	}
	s.profiles[id] = p
	return nil
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, subject uuid.UUID, tokenHash string, expiresAt time.Time) (repo.RefreshToken, error) {
	t := repo.RefreshToken{ID: uuid.New(), Subject: subject, TokenHash: tokenHash, ExpiresAt: expiresAt}
	s.tokens[tokenHash] = t
	s.insertedHashes = append(s.insertedHashes, tokenHash)
	return t, nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error) {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.RefreshToken{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if t, ok := s.tokens[tokenHash]; ok {
		t.Revoked = true
		s.tokens[tokenHash] = t
	}
	s.revokedHashes = append(s.revokedHashes, tokenHash)
	return nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	for hash, t := range s.tokens {
		if t.Subject == subject && hash != keepHash {
			t.Revoked = true
			s.tokens[hash] = t
		}
	}
	return nil
}

type stubRedis struct {
	values map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: make(map[string]string)}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func strPtr(s string) *string { return &s }

func newTestService(r *stubAuthRepo, cache *stubRedis) *AuthService {
	return &AuthService{
		repo:       r,
		redis:      cache,
		jwt:        auth.NewJWTManager("testgeheim-van-minstens-32-tekens!!", 15*time.Minute),
		refreshTTL: time.Hour,
	}
}

func testProfile(role, password string) repo.Profile {
	hash, _ := auth.Hash(password)
	return repo.Profile{
		ID:           uuid.New(),
		Email:        strPtr("zorg@example.nl"),
		FullName:     strPtr("Z. Medewerker"),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repoStub := newStubAuthRepo()
	profile := testProfile(repo.RoleMedewerker, "wachtwoord123")
	repoStub.addProfile(profile)
	svc := newTestService(repoStub, newStubRedis())

	result, err := svc.Login(context.Background(), "Zorg@Example.nl", "wachtwoord123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Role != repo.RoleMedewerker {
		t.Fatalf("expected role medewerker, got %s", result.Role)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if len(repoStub.insertedHashes) != 1 {
		t.Fatalf("expected 1 persisted refresh token, got %d", len(repoStub.insertedHashes))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repoStub := newStubAuthRepo()
	repoStub.addProfile(testProfile(repo.RoleMedewerker, "wachtwoord123"))
	svc := newTestService(repoStub, newStubRedis())

	if _, err := svc.Login(context.Background(), "zorg@example.nl", "fout"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newStubAuthRepo(), newStubRedis())

	if _, err := svc.Login(context.Background(), "niemand@example.nl", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	repoStub := newStubAuthRepo()
	profile := testProfile(repo.RoleMedewerker, "wachtwoord123")
	profile.IsActive = false
	repoStub.addProfile(profile)
	svc := newTestService(repoStub, newStubRedis())

	if _, err := svc.Login(context.Background(), "zorg@example.nl", "wachtwoord123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestResolveProfileRepairsMissingRow(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc := newTestService(repoStub, newStubRedis())

	subject := uuid.New()
	profile, err := svc.ResolveProfile(context.Background(), subject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repoStub.repaired {
		t.Fatal("expected missing profile to be repaired")
	}
	if profile.Role != repo.RoleMedewerker {
		t.Fatalf("repaired profile must get the least privileged role, got %s", profile.Role)
	}
}

func TestNormalizeRoleNeverEscalates(t *testing.T) {
	cases := map[string]string{
		"medewerker":  repo.RoleMedewerker,
		"super_admin": repo.RoleSuperAdmin,
		"SUPER_ADMIN": repo.RoleSuperAdmin,
		"beheerder":   repo.RoleMedewerker,
		"":            repo.RoleMedewerker,
		"admin":       repo.RoleMedewerker,
	}
	for input, want := range cases {
		if got := normalizeRole(input); got != want {
			t.Fatalf("normalizeRole(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	repoStub := newStubAuthRepo()
	profile := testProfile(repo.RoleSuperAdmin, "wachtwoord123")
	repoStub.addProfile(profile)
	cache := newStubRedis()
	svc := newTestService(repoStub, cache)

	first, err := svc.Login(context.Background(), "zorg@example.nl", "wachtwoord123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token after rotation")
	}
	if second.Role != repo.RoleSuperAdmin {
		t.Fatalf("expected role super_admin, got %s", second.Role)
	}

	// Oude token is ingetrokken en daarna onbruikbaar.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid for rotated token, got %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestService(newStubAuthRepo(), newStubRedis())

	if _, err := svc.Refresh(context.Background(), "onbekend"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	repoStub := newStubAuthRepo()
	repoStub.addProfile(testProfile(repo.RoleMedewerker, "wachtwoord123"))
	cache := newStubRedis()
	svc := newTestService(repoStub, cache)

	result, err := svc.Login(context.Background(), "zorg@example.nl", "wachtwoord123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), result.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid after logout, got %v", err)
	}
}

func TestGetMeUnknownSubjectGetsRepairedProfile(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc := newTestService(repoStub, newStubRedis())

	me, err := svc.GetMe(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if me.Role != repo.RoleMedewerker {
		t.Fatalf("expected medewerker, got %s", me.Role)
	}
}
