package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Jeffreasy/MIC-Registratie/internal/incident"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

// ErrValidation markeert invoerfouten; de boodschap is geschikt voor
// de client.
var ErrValidation = errors.New("validatiefout")

// AdminRepository is de opslag die het beheer nodig heeft.
type AdminRepository interface {
	ListClients(context.Context) ([]Client, error)
	CreateClient(context.Context, string) (Client, error)
	UpdateClient(context.Context, uuid.UUID, *string, *bool) error
	DeactivateClient(context.Context, uuid.UUID) error
	ListIncidentTypes(context.Context) ([]IncidentType, error)
	CreateIncidentType(context.Context, TypeInput) (IncidentType, error)
	UpdateIncidentType(context.Context, int64, TypeInput, *bool) error
	DeactivateIncidentType(context.Context, int64) error
	ListAccounts(context.Context) ([]Account, error)
	UpdateRole(context.Context, uuid.UUID, string) error
	SetAccountActive(context.Context, uuid.UUID, bool) error
	DailyTotals(context.Context, string, string) ([]DailyTotal, error)
	MonthlySummary(context.Context) ([]MonthlyTotal, error)
}

// logLister levert de organisatiebrede logs voor rapportages.
// *incident.Repository voldoet hieraan.
type logLister interface {
	ListLogsByRange(context.Context, string, string) ([]stats.LogWithRelations, error)
}

// userAdmin beheert accounts met wachtwoord; *service.UserService
// voldoet hieraan.
type userAdmin interface {
	CreateUser(ctx context.Context, email, password, fullName, role string) (repo.Profile, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

// Service bevat de beheerregels.
type Service struct {
	repo  AdminRepository
	logs  logLister
	users userAdmin
	cache *redis.Client
}

func NewService(r AdminRepository, logs logLister, users userAdmin, cache *redis.Client) *Service {
	return &Service{repo: r, logs: logs, users: users, cache: cache}
}

// invalidateTypeCache gooit de gedeelde typenlijst weg na een
// wijziging, zodat medewerkers direct de nieuwe lijst zien.
func (s *Service) invalidateTypeCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, incident.TypeCacheKey).Err()
	}
}

func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) CreateClient(ctx context.Context, fullName string) (Client, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Client{}, fmt.Errorf("%w: naam is verplicht", ErrValidation)
	}
	return s.repo.CreateClient(ctx, fullName)
}

func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, fullName *string, isActive *bool) error {
	if fullName != nil && strings.TrimSpace(*fullName) == "" {
		return fmt.Errorf("%w: naam mag niet leeg zijn", ErrValidation)
	}
	return s.repo.UpdateClient(ctx, id, fullName, isActive)
}

// DeactivateClient is de enige manier om een cliënt te "verwijderen";
// registraties blijven aan de rij hangen.
func (s *Service) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateClient(ctx, id)
}

func (s *Service) ListIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	return s.repo.ListIncidentTypes(ctx)
}

func validateTypeInput(in TypeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: naam is verplicht", ErrValidation)
	}
	if in.Category != nil {
		switch *in.Category {
		case stats.CategoryFysiek, stats.CategoryVerbaal, stats.CategoryEmotioneel, stats.CategorySociaal:
		default:
			return fmt.Errorf("%w: onbekende categorie %q", ErrValidation, *in.Category)
		}
	}
	if in.SeverityLevel != nil && (*in.SeverityLevel < 1 || *in.SeverityLevel > 5) {
		return fmt.Errorf("%w: ernst moet tussen 1 en 5 liggen", ErrValidation)
	}
	return nil
}

func (s *Service) CreateIncidentType(ctx context.Context, in TypeInput) (IncidentType, error) {
	if err := validateTypeInput(in); err != nil {
		return IncidentType{}, err
	}
	t, err := s.repo.CreateIncidentType(ctx, in)
	if err != nil {
		return IncidentType{}, err
	}
	s.invalidateTypeCache(ctx)
	return t, nil
}

func (s *Service) UpdateIncidentType(ctx context.Context, id int64, in TypeInput, isActive *bool) error {
	if err := validateTypeInput(in); err != nil {
		return err
	}
	if err := s.repo.UpdateIncidentType(ctx, id, in, isActive); err != nil {
		return err
	}
	s.invalidateTypeCache(ctx)
	return nil
}

func (s *Service) DeactivateIncidentType(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateIncidentType(ctx, id); err != nil {
		return err
	}
	s.invalidateTypeCache(ctx)
	return nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// UpdateRole wijzigt de rol van een account naar een van de twee
// bekende rollen.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != repo.RoleMedewerker && role != repo.RoleSuperAdmin {
		return fmt.Errorf("%w: onbekende rol %q", ErrValidation, role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *Service) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetAccountActive(ctx, id, active)
}

// CreateUser maakt een account aan via de accountservice.
func (s *Service) CreateUser(ctx context.Context, email, password, fullName, role string) (repo.Profile, error) {
	return s.users.CreateUser(ctx, email, password, fullName, role)
}

// ResetPassword overschrijft het wachtwoord van een account direct.
// Er is bewust geen mailstroom: beheer zet het wachtwoord en geeft het
// persoonlijk door.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	return s.users.ResetPassword(ctx, email, newPassword)
}

func (s *Service) DailyTotals(ctx context.Context, start, end string) ([]DailyTotal, error) {
	return s.repo.DailyTotals(ctx, start, end)
}

func (s *Service) MonthlySummary(ctx context.Context) ([]MonthlyTotal, error) {
	return s.repo.MonthlySummary(ctx)
}

// OverviewReport is het organisatiebrede statistiekrapport.
type OverviewReport struct {
	TotalCount  int64                 `json:"total_count"`
	PerCategory []stats.CategoryTotal `json:"per_category"`
	PerLocation []stats.LocationTotal `json:"per_location"`
	PerHour     []stats.HourTotal     `json:"per_hour"`
}

// Overview berekent de organisatiebrede aggregaties over alle
// medewerkers binnen een datumbereik. Categorieën zonder registraties
// blijven zichtbaar (beheertabellen tonen altijd alle vijf).
func (s *Service) Overview(ctx context.Context, start, end string) (OverviewReport, error) {
	logs, err := s.logs.ListLogsByRange(ctx, start, end)
	if err != nil {
		return OverviewReport{}, err
	}

	var total int64
	for _, log := range logs {
		total += log.Count
	}

	return OverviewReport{
		TotalCount:  total,
		PerCategory: stats.TotalsByCategory(logs, false),
		PerLocation: stats.TotalsByLocation(logs),
		PerHour:     stats.TotalsByHourOfDay(logs),
	}, nil
}
