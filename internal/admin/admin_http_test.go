package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
	"github.com/Jeffreasy/MIC-Registratie/internal/service"
	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

type stubAdminRepo struct {
	clients            []Client
	types              []IncidentType
	accounts           []Account
	roleUpdates        map[uuid.UUID]string
	deactivatedClients []uuid.UUID
	deactivatedTypes   []int64
}

func (s *stubAdminRepo) ListClients(ctx context.Context) ([]Client, error) {
	return s.clients, nil
}

func (s *stubAdminRepo) CreateClient(ctx context.Context, fullName string) (Client, error) {
	c := Client{ID: uuid.New(), FullName: fullName, IsActive: true}
	s.clients = append(s.clients, c)
	return c, nil
}

func (s *stubAdminRepo) UpdateClient(ctx context.Context, id uuid.UUID, fullName *string, isActive *bool) error {
	for i := range s.clients {
		if s.clients[i].ID == id {
			if fullName != nil {
				s.clients[i].FullName = *fullName
			}
			if isActive != nil {
				s.clients[i].IsActive = *isActive
			}
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients[i].IsActive = false
			s.deactivatedClients = append(s.deactivatedClients, id)
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) ListIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	return s.types, nil
}

func (s *stubAdminRepo) CreateIncidentType(ctx context.Context, in TypeInput) (IncidentType, error) {
	t := IncidentType{
		ID:            int64(len(s.types) + 1),
		Name:          in.Name,
		Category:      in.Category,
		SeverityLevel: in.SeverityLevel,
		IsActive:      true,
	}
	s.types = append(s.types, t)
	return t, nil
}

func (s *stubAdminRepo) UpdateIncidentType(ctx context.Context, id int64, in TypeInput, isActive *bool) error {
	for i := range s.types {
		if s.types[i].ID == id {
			s.types[i].Name = in.Name
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) DeactivateIncidentType(ctx context.Context, id int64) error {
	for i := range s.types {
		if s.types[i].ID == id {
			s.types[i].IsActive = false
			s.deactivatedTypes = append(s.deactivatedTypes, id)
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.accounts, nil
}

func (s *stubAdminRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	for _, a := range s.accounts {
		if a.ID == id {
			if s.roleUpdates == nil {
				s.roleUpdates = make(map[uuid.UUID]string)
			}
			s.roleUpdates[id] = role
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	for _, a := range s.accounts {
		if a.ID == id {
			return nil
		}
	}
	return errNotFound
}

func (s *stubAdminRepo) DailyTotals(ctx context.Context, start, end string) ([]DailyTotal, error) {
	return []DailyTotal{{LogDate: start, TotalCount: 3}}, nil
}

func (s *stubAdminRepo) MonthlySummary(ctx context.Context) ([]MonthlyTotal, error) {
	return []MonthlyTotal{{Month: "2026-08", TotalCount: 12}}, nil
}

type stubLogLister struct {
	logs []stats.LogWithRelations
}

func (s *stubLogLister) ListLogsByRange(ctx context.Context, start, end string) ([]stats.LogWithRelations, error) {
	return s.logs, nil
}

type stubUserAdmin struct {
	createErr error
	resetErr  error
	created   []string
}

func (s *stubUserAdmin) CreateUser(ctx context.Context, email, password, fullName, role string) (repo.Profile, error) {
	if s.createErr != nil {
		return repo.Profile{}, s.createErr
	}
	s.created = append(s.created, email)
	return repo.Profile{ID: uuid.New(), Email: &email, Role: role}, nil
}

func (s *stubUserAdmin) ResetPassword(ctx context.Context, email, newPassword string) error {
	return s.resetErr
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestHandler(repoStub *stubAdminRepo, users *stubUserAdmin) http.Handler {
	svc := NewService(repoStub, &stubLogLister{
		logs: []stats.LogWithRelations{
			{ID: 1, Count: 2, Location: strPtr("Keuken"), TimeOfDay: strPtr("09:15"),
				IncidentType: stats.TypeInfo{Name: "Slaan", Category: strPtr(stats.CategoryFysiek)}},
			{ID: 2, Count: 1,
				IncidentType: stats.TypeInfo{Name: "Weigeren"}},
		},
	}, users, nil)
	r := chi.NewRouter()
	Mount(r, NewHandler(svc))
	return r
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{
		clients: []Client{{ID: uuid.New(), FullName: "T. de Vries", IsActive: true}},
		types: []IncidentType{
			{ID: 1, Name: "Slaan", Category: strPtr(stats.CategoryFysiek), SeverityLevel: intPtr(4), IsActive: true},
		},
		accounts: []Account{{ID: uuid.New(), Role: repo.RoleMedewerker, IsActive: true}},
	}
}

func TestAdminHandlers(t *testing.T) {
	repoStub := newStubAdminRepo()
	handler := newTestHandler(repoStub, &stubUserAdmin{})
	clientID := repoStub.clients[0].ID
	accountID := repoStub.accounts[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"clienten", http.MethodGet, "/clienten/", nil, http.StatusOK},
		{"client-aanmaken", http.MethodPost, "/clienten/", map[string]any{"full_name": "N. Jansen"}, http.StatusCreated},
		{"client-zonder-naam", http.MethodPost, "/clienten/", map[string]any{"full_name": "  "}, http.StatusBadRequest},
		{"client-bijwerken", http.MethodPatch, "/clienten/" + clientID.String(), map[string]any{"full_name": "T. de Vries-Bakker"}, http.StatusOK},
		{"client-onbekend", http.MethodPatch, "/clienten/" + uuid.NewString(), map[string]any{"is_active": false}, http.StatusNotFound},
		{"client-ongeldig-id", http.MethodPatch, "/clienten/abc", map[string]any{"is_active": false}, http.StatusBadRequest},
		{"client-deactiveren", http.MethodDelete, "/clienten/" + clientID.String(), nil, http.StatusOK},
		{"typen", http.MethodGet, "/incident-typen/", nil, http.StatusOK},
		{"type-aanmaken", http.MethodPost, "/incident-typen/", map[string]any{"name": "Schoppen", "category": stats.CategoryFysiek, "severity_level": 3}, http.StatusCreated},
		{"type-onbekende-categorie", http.MethodPost, "/incident-typen/", map[string]any{"name": "X", "category": "raar"}, http.StatusBadRequest},
		{"type-ernst-buiten-bereik", http.MethodPost, "/incident-typen/", map[string]any{"name": "X", "severity_level": 9}, http.StatusBadRequest},
		{"type-deactiveren", http.MethodDelete, "/incident-typen/1", nil, http.StatusOK},
		{"type-onbekend", http.MethodDelete, "/incident-typen/99", nil, http.StatusNotFound},
		{"gebruikers", http.MethodGet, "/gebruikers/", nil, http.StatusOK},
		{"gebruiker-aanmaken", http.MethodPost, "/gebruikers/", map[string]any{"email": "nieuw@example.nl", "password": "wachtwoord123", "role": "medewerker"}, http.StatusCreated},
		{"rol-bijwerken", http.MethodPatch, "/gebruikers/" + accountID.String() + "/rol", map[string]any{"role": "super_admin"}, http.StatusOK},
		{"rol-onbekend", http.MethodPatch, "/gebruikers/" + accountID.String() + "/rol", map[string]any{"role": "beheerder"}, http.StatusBadRequest},
		{"actief-zetten", http.MethodPatch, "/gebruikers/" + accountID.String() + "/actief", map[string]any{"is_active": false}, http.StatusOK},
		{"dagelijks", http.MethodGet, "/statistieken/dagelijks?start=2026-08-01&eind=2026-08-28", nil, http.StatusOK},
		{"dagelijks-ongeldig", http.MethodGet, "/statistieken/dagelijks?start=gisteren", nil, http.StatusBadRequest},
		{"dagelijks-omgekeerd", http.MethodGet, "/statistieken/dagelijks?start=2026-08-28&eind=2026-08-01", nil, http.StatusBadRequest},
		{"maandelijks", http.MethodGet, "/statistieken/maandelijks", nil, http.StatusOK},
		{"overzicht", http.MethodGet, "/statistieken/overzicht", nil, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body *bytes.Buffer
			if tc.body != nil {
				raw, _ := json.Marshal(tc.body)
				body = bytes.NewBuffer(raw)
			} else {
				body = bytes.NewBuffer(nil)
			}

			req := httptest.NewRequest(tc.method, tc.path, body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	if repoStub.roleUpdates[accountID] != repo.RoleSuperAdmin {
		t.Fatalf("expected role update to super_admin, got %q", repoStub.roleUpdates[accountID])
	}
	if len(repoStub.deactivatedTypes) != 1 || repoStub.deactivatedTypes[0] != 1 {
		t.Fatalf("expected type 1 deactivated, got %v", repoStub.deactivatedTypes)
	}
}

func TestCreateUserMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"email-bezet", service.ErrEmailTaken},
		{"zwak-wachtwoord", service.ErrWeakPassword},
		{"rol-onbekend", service.ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(newStubAdminRepo(), &stubUserAdmin{createErr: tc.err})

			raw, _ := json.Marshal(map[string]any{"email": "a@b.nl", "password": "wachtwoord123"})
			req := httptest.NewRequest(http.MethodPost, "/gebruikers/", bytes.NewBuffer(raw))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOverzichtTeltAlleMedewerkersMee(t *testing.T) {
	handler := newTestHandler(newStubAdminRepo(), &stubUserAdmin{})

	req := httptest.NewRequest(http.MethodGet, "/statistieken/overzicht", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data OverviewReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if envelope.Data.TotalCount != 3 {
		t.Fatalf("expected total 3, got %d", envelope.Data.TotalCount)
	}
	// Beheertabellen tonen alle vijf categorieën, ook lege.
	if len(envelope.Data.PerCategory) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(envelope.Data.PerCategory))
	}
	if len(envelope.Data.PerHour) != 24 {
		t.Fatalf("expected 24 hour buckets, got %d", len(envelope.Data.PerHour))
	}
}
