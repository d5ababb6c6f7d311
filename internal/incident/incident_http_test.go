package incident

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/Jeffreasy/MIC-Registratie/internal/http/middleware"
	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

type stubRepo struct {
	logs        []stats.LogWithRelations
	clients     []Client
	types       []IncidentType
	updated     map[int64]int64
	deleted     []int64
	groupUpdate []int64
	groupDelete []int64
}

func (s *stubRepo) ListLogsByUserAndDate(ctx context.Context, userID uuid.UUID, date string) ([]stats.LogWithRelations, error) {
	return s.logs, nil
}
func (s *stubRepo) ListLogsByUserAndRange(ctx context.Context, userID uuid.UUID, start, end string) ([]stats.LogWithRelations, error) {
	return s.logs, nil
}
func (s *stubRepo) InsertLog(ctx context.Context, in NewLog) (stats.LogWithRelations, error) {
	return stats.LogWithRelations{
		ID:             99,
		UserID:         in.UserID,
		ClientID:       in.ClientID,
		IncidentTypeID: in.IncidentTypeID,
		Count:          in.Count,
		Severity:       in.Severity,
	}, nil
}
func (s *stubRepo) UpdateLogCount(ctx context.Context, userID uuid.UUID, id, count int64) error {
	if s.updated == nil {
		s.updated = make(map[int64]int64)
	}
	s.updated[id] = count
	return nil
}
func (s *stubRepo) DeleteLog(ctx context.Context, userID uuid.UUID, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubRepo) UpdateGroupedCount(ctx context.Context, userID uuid.UUID, ids []int64, count int64) error {
	s.groupUpdate = ids
	return nil
}
func (s *stubRepo) DeleteGrouped(ctx context.Context, userID uuid.UUID, ids []int64) error {
	s.groupDelete = ids
	return nil
}
func (s *stubRepo) ListActiveClients(ctx context.Context) ([]Client, error) {
	return s.clients, nil
}
func (s *stubRepo) ListActiveIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	return s.types, nil
}
func (s *stubRepo) GetIncidentType(ctx context.Context, id int64) (IncidentType, error) {
	for _, t := range s.types {
		if t.ID == id {
			return t, nil
		}
	}
	return IncidentType{}, errNotFound
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newStubRepo() *stubRepo {
	clientID := uuid.New()
	today := time.Now().Format("2006-01-02")
	return &stubRepo{
		logs: []stats.LogWithRelations{
			{
				ID: 1, LogDate: today, ClientID: clientID, IncidentTypeID: 1,
				Count: 2, Location: strPtr("Keuken"),
				Client:       stats.ClientInfo{FullName: "T. de Vries"},
				IncidentType: stats.TypeInfo{Name: "Slaan", Category: strPtr(stats.CategoryFysiek)},
			},
			{
				ID: 2, LogDate: today, ClientID: clientID, IncidentTypeID: 1,
				Count: 3, Location: strPtr("Keuken"),
				Client:       stats.ClientInfo{FullName: "T. de Vries"},
				IncidentType: stats.TypeInfo{Name: "Slaan", Category: strPtr(stats.CategoryFysiek)},
			},
		},
		clients: []Client{{ID: clientID, FullName: "T. de Vries", IsActive: true}},
		types: []IncidentType{
			{ID: 1, Name: "Slaan", Category: strPtr(stats.CategoryFysiek), SeverityLevel: intPtr(4), IsActive: true},
			{ID: 2, Name: "Oud type", IsActive: false},
		},
	}
}

func TestIncidentHandlers(t *testing.T) {
	repo := newStubRepo()
	handler := NewHandler(NewService(repo, nil))
	clientID := repo.clients[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"vandaag", http.MethodGet, "/registraties/vandaag", nil, http.StatusOK},
		{"bereik", http.MethodGet, "/registraties/?start=2024-01-01&eind=2024-01-31", nil, http.StatusOK},
		{"bereik-ongeldig", http.MethodGet, "/registraties/?start=gisteren", nil, http.StatusBadRequest},
		{"bereik-omgekeerd", http.MethodGet, "/registraties/?start=2024-01-31&eind=2024-01-01", nil, http.StatusBadRequest},
		{"create", http.MethodPost, "/registraties/", map[string]any{"client_id": clientID, "incident_type_id": 1, "count": 1}, http.StatusCreated},
		{"create-zonder-client", http.MethodPost, "/registraties/", map[string]any{"incident_type_id": 1}, http.StatusBadRequest},
		{"create-inactief-type", http.MethodPost, "/registraties/", map[string]any{"client_id": clientID, "incident_type_id": 2}, http.StatusBadRequest},
		{"create-onbekend-type", http.MethodPost, "/registraties/", map[string]any{"client_id": clientID, "incident_type_id": 7}, http.StatusNotFound},
		{"patch", http.MethodPatch, "/registraties/1", map[string]any{"count": 4}, http.StatusOK},
		{"patch-telling-nul", http.MethodPatch, "/registraties/1", map[string]any{"count": 0}, http.StatusBadRequest},
		{"patch-groep", http.MethodPatch, "/registraties/1", map[string]any{"count": 5, "combined_log_ids": []int64{1, 2}}, http.StatusOK},
		{"delete", http.MethodDelete, "/registraties/1", nil, http.StatusOK},
		{"delete-groep", http.MethodDelete, "/registraties/1", map[string]any{"combined_log_ids": []int64{1, 2}}, http.StatusOK},
		{"clienten", http.MethodGet, "/clienten", nil, http.StatusOK},
		{"typen", http.MethodGet, "/incident-typen", nil, http.StatusOK},
		{"stats-typen", http.MethodGet, "/statistieken/typen", nil, http.StatusOK},
		{"stats-categorieen", http.MethodGet, "/statistieken/categorieen", nil, http.StatusOK},
		{"stats-locaties", http.MethodGet, "/statistieken/locaties", nil, http.StatusOK},
		{"stats-uren", http.MethodGet, "/statistieken/uren", nil, http.StatusOK},
		{"export-csv", http.MethodGet, "/export?format=csv", nil, http.StatusOK},
		{"export-onbekend", http.MethodGet, "/export?format=pdf", nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, requestBody(tc.body))
			req = withAuth(req)
			rec := httptest.NewRecorder()

			r := chi.NewRouter()
			handler.RegisterRoutes(r)
			r.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	if got := repo.updated[1]; got != 4 {
		t.Fatalf("expected count 4 for log 1, got %d", got)
	}
	if len(repo.groupUpdate) != 2 || len(repo.groupDelete) != 2 {
		t.Fatalf("expected grouped fan-out, got update=%v delete=%v", repo.groupUpdate, repo.groupDelete)
	}
}

func TestVandaagGroepeertRegistraties(t *testing.T) {
	repo := newStubRepo()
	handler := NewHandler(NewService(repo, nil))

	req := withAuth(httptest.NewRequest(http.MethodGet, "/registraties/vandaag", nil))
	rec := httptest.NewRecorder()

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Registraties []stats.LogWithRelations `json:"registraties"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unexpected body: %v", err)
	}

	if len(envelope.Data.Registraties) != 1 {
		t.Fatalf("expected 1 grouped registration, got %d", len(envelope.Data.Registraties))
	}
	reg := envelope.Data.Registraties[0]
	if reg.Count != 5 {
		t.Fatalf("expected combined count 5, got %d", reg.Count)
	}
	if len(reg.CombinedLogIDs) != 2 {
		t.Fatalf("expected 2 combined ids, got %v", reg.CombinedLogIDs)
	}
}

func TestCreateNeemtErnstVanTypeOver(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	reg, err := svc.CreateRegistration(context.Background(), NewLog{
		UserID:         uuid.New(),
		ClientID:       repo.clients[0].ID,
		IncidentTypeID: 1,
		Count:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Severity == nil || *reg.Severity != 4 {
		t.Fatalf("expected severity snapshot 4, got %v", reg.Severity)
	}
}

func TestParseDateRange(t *testing.T) {
	// Zonder parameters: de afgelopen 30 dagen.
	req := httptest.NewRequest(http.MethodGet, "/registraties/", nil)
	from, to, err := ParseDateRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now := time.Now()
	if to != now.Format("2006-01-02") {
		t.Fatalf("expected eind vandaag, got %s", to)
	}
	if from != now.AddDate(0, 0, -30).Format("2006-01-02") {
		t.Fatalf("expected start 30 dagen terug, got %s", from)
	}

	// Een start na het einde is een invoerfout.
	req = httptest.NewRequest(http.MethodGet, "/registraties/?start=2024-02-01&eind=2024-01-01", nil)
	if _, _, err := ParseDateRange(req); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func requestBody(body any) *bytes.Buffer {
	if body == nil {
		return bytes.NewBuffer(nil)
	}
	b, _ := json.Marshal(body)
	return bytes.NewBuffer(b)
}

func withAuth(req *http.Request) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeySubject, uuid.New().String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRole, "medewerker")
	return req.WithContext(ctx)
}
