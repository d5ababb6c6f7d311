package incident

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

var (
	// ErrTypeInactive: registreren op een uitgeschakeld type is niet toegestaan.
	ErrTypeInactive = errors.New("incidenttype is niet actief")
)

// TypeCacheKey is de Redis-sleutel van de actieve-typenlijst. Beheer
// verwijdert deze bij een wijziging zodat medewerkers niet op de TTL
// hoeven te wachten.
const TypeCacheKey = "incidenttypen:actief"

const typeCacheTTL = 5 * time.Minute

// LogRepository is de opslag die de registratieservice nodig heeft.
type LogRepository interface {
	ListLogsByUserAndDate(context.Context, uuid.UUID, string) ([]stats.LogWithRelations, error)
	ListLogsByUserAndRange(context.Context, uuid.UUID, string, string) ([]stats.LogWithRelations, error)
	InsertLog(context.Context, NewLog) (stats.LogWithRelations, error)
	UpdateLogCount(context.Context, uuid.UUID, int64, int64) error
	DeleteLog(context.Context, uuid.UUID, int64) error
	UpdateGroupedCount(context.Context, uuid.UUID, []int64, int64) error
	DeleteGrouped(context.Context, uuid.UUID, []int64) error
	ListActiveClients(context.Context) ([]Client, error)
	ListActiveIncidentTypes(context.Context) ([]IncidentType, error)
	GetIncidentType(context.Context, int64) (IncidentType, error)
}

// Service bevat de regels rond het registreren van incidenten.
type Service struct {
	repo  LogRepository
	cache *redis.Client
}

func NewService(repo LogRepository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

// TodayRegistrations geeft de registraties van vandaag, samengevoegd
// per cliënt, type, locatie en datum.
func (s *Service) TodayRegistrations(ctx context.Context, userID uuid.UUID) ([]stats.LogWithRelations, error) {
	logs, err := s.repo.ListLogsByUserAndDate(ctx, userID, time.Now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return stats.GroupByRegistrationKey(logs), nil
}

// ListRegistrations geeft de losse logregels binnen een datumbereik,
// zonder samenvoeging.
func (s *Service) ListRegistrations(ctx context.Context, userID uuid.UUID, start, end string) ([]stats.LogWithRelations, error) {
	return s.repo.ListLogsByUserAndRange(ctx, userID, start, end)
}

// CreateRegistration registreert een nieuw incident. Zonder expliciete
// ernst wordt het ernstniveau van het type vastgelegd, zodat de
// registratie hetzelfde blijft als het type later wijzigt.
func (s *Service) CreateRegistration(ctx context.Context, in NewLog) (stats.LogWithRelations, error) {
	typ, err := s.repo.GetIncidentType(ctx, in.IncidentTypeID)
	if err != nil {
		return stats.LogWithRelations{}, err
	}
	if !typ.IsActive {
		return stats.LogWithRelations{}, ErrTypeInactive
	}

	if in.Severity == nil && typ.SeverityLevel != nil {
		severity := *typ.SeverityLevel
		in.Severity = &severity
	}
	if in.Count < 1 {
		in.Count = 1
	}

	return s.repo.InsertLog(ctx, in)
}

// UpdateCount wijzigt de telling van een registratie. Voor een
// samengevoegde registratie waaiert de wijziging uit over alle
// onderliggende rijen: de eerste krijgt de nieuwe telling, de rest
// verdwijnt.
func (s *Service) UpdateCount(ctx context.Context, userID uuid.UUID, id, count int64, combined []int64) error {
	if len(combined) > 1 {
		return s.repo.UpdateGroupedCount(ctx, userID, combined, count)
	}
	return s.repo.UpdateLogCount(ctx, userID, id, count)
}

// DeleteRegistration verwijdert een registratie, inclusief alle
// onderliggende rijen bij een samengevoegde registratie.
func (s *Service) DeleteRegistration(ctx context.Context, userID uuid.UUID, id int64, combined []int64) error {
	if len(combined) > 1 {
		return s.repo.DeleteGrouped(ctx, userID, combined)
	}
	return s.repo.DeleteLog(ctx, userID, id)
}

// ActiveClients geeft de cliënten waarvoor geregistreerd kan worden.
func (s *Service) ActiveClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListActiveClients(ctx)
}

// ActiveIncidentTypes geeft de registreerbare typen, met een korte
// Redis-cache omdat het registratiescherm deze lijst bij elke sessie
// ophaalt en de inhoud zelden wijzigt.
func (s *Service) ActiveIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, TypeCacheKey).Bytes(); err == nil {
			var types []IncidentType
			if json.Unmarshal(data, &types) == nil {
				return types, nil
			}
		}
	}

	types, err := s.repo.ListActiveIncidentTypes(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(types); err == nil {
			_ = s.cache.Set(ctx, TypeCacheKey, payload, typeCacheTTL).Err()
		}
	}

	return types, nil
}

// StatisticsReport bundelt alle aggregaties over een datumbereik.
type StatisticsReport struct {
	TotalCount  int64                 `json:"total_count"`
	PerType     []stats.TypeTotal     `json:"per_type"`
	PerCategory []stats.CategoryTotal `json:"per_category"`
	PerLocation []stats.LocationTotal `json:"per_location"`
	PerHour     []stats.HourTotal     `json:"per_hour"`
}

// Statistics berekent het volledige statistiekrapport over de eigen
// registraties binnen een datumbereik.
func (s *Service) Statistics(ctx context.Context, userID uuid.UUID, start, end string) (StatisticsReport, error) {
	logs, err := s.repo.ListLogsByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return StatisticsReport{}, err
	}

	types, err := s.ActiveIncidentTypes(ctx)
	if err != nil {
		return StatisticsReport{}, err
	}
	typeInfos := make([]stats.TypeInfo, 0, len(types))
	for _, t := range types {
		typeInfos = append(typeInfos, stats.TypeInfo{
			Name:                 t.Name,
			Category:             t.Category,
			SeverityLevel:        t.SeverityLevel,
			ColorCode:            t.ColorCode,
			RequiresNotification: t.RequiresNotification,
		})
	}

	var total int64
	for _, log := range logs {
		total += log.Count
	}

	return StatisticsReport{
		TotalCount:  total,
		PerType:     stats.TotalsByIncidentType(logs, typeInfos),
		PerCategory: stats.TotalsByCategory(logs, true),
		PerLocation: stats.TotalsByLocation(logs),
		PerHour:     stats.TotalsByHourOfDay(logs),
	}, nil
}
