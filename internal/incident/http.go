package incident

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Jeffreasy/MIC-Registratie/internal/export"
	httpmiddleware "github.com/Jeffreasy/MIC-Registratie/internal/http/middleware"
)

// Handler verzorgt de registratieroutes voor medewerkers.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/registraties", func(r chi.Router) {
		r.Get("/", h.handleListRegistraties)
		r.Get("/vandaag", h.handleVandaag)
		r.Post("/", h.handleCreateRegistratie)
		r.Patch("/{id}", h.handleUpdateCount)
		r.Delete("/{id}", h.handleDeleteRegistratie)
	})

	r.Get("/clienten", h.handleListClienten)
	r.Get("/incident-typen", h.handleListIncidentTypen)

	r.Route("/statistieken", func(r chi.Router) {
		r.Get("/typen", h.handleStatsTypen)
		r.Get("/categorieen", h.handleStatsCategorieen)
		r.Get("/locaties", h.handleStatsLocaties)
		r.Get("/uren", h.handleStatsUren)
	})

	r.Get("/export", h.handleExport)
}

func (h *Handler) handleVandaag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	registraties, err := h.service.TodayRegistrations(ctx, userID)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	logRequest(ctx, "GET /registraties/vandaag", userID, start)
	writeJSON(w, http.StatusOK, map[string]any{"registraties": registraties})
}

func (h *Handler) handleListRegistraties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	from, to, err := ParseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig datumbereik", nil)
		return
	}

	registraties, err := h.service.ListRegistrations(ctx, userID, from, to)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	logRequest(ctx, "GET /registraties", userID, start)
	writeJSON(w, http.StatusOK, map[string]any{"registraties": registraties})
}

func (h *Handler) handleCreateRegistratie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	var payload struct {
		ClientID               uuid.UUID `json:"client_id"`
		IncidentTypeID         int64     `json:"incident_type_id"`
		LogDate                *string   `json:"log_date"`
		Count                  int64     `json:"count"`
		Notes                  *string   `json:"notes"`
		Location               *string   `json:"location"`
		Severity               *int      `json:"severity"`
		TimeOfDay              *string   `json:"time_of_day"`
		TriggeredBy            *string   `json:"triggered_by"`
		InterventionSuccessful *bool     `json:"intervention_successful"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if payload.ClientID == uuid.Nil || payload.IncidentTypeID == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "client_id en incident_type_id zijn verplicht", nil)
		return
	}
	if payload.LogDate != nil {
		if _, err := time.Parse("2006-01-02", *payload.LogDate); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige datum", nil)
			return
		}
	}
	if payload.TimeOfDay != nil {
		if _, err := time.Parse("15:04", *payload.TimeOfDay); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig tijdstip", nil)
			return
		}
	}
	if payload.Severity != nil && (*payload.Severity < 1 || *payload.Severity > 5) {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ernst moet tussen 1 en 5 liggen", nil)
		return
	}

	intervention := true
	if payload.InterventionSuccessful != nil {
		intervention = *payload.InterventionSuccessful
	}

	registratie, err := h.service.CreateRegistration(ctx, NewLog{
		UserID:                 userID,
		ClientID:               payload.ClientID,
		IncidentTypeID:         payload.IncidentTypeID,
		LogDate:                payload.LogDate,
		Count:                  payload.Count,
		Notes:                  payload.Notes,
		Location:               payload.Location,
		Severity:               payload.Severity,
		TimeOfDay:              payload.TimeOfDay,
		TriggeredBy:            payload.TriggeredBy,
		InterventionSuccessful: intervention,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /registraties", userID, start)
	writeJSON(w, http.StatusCreated, map[string]any{"registratie": registratie})
}

func (h *Handler) handleUpdateCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige registratie", nil)
		return
	}

	var payload struct {
		Count          int64   `json:"count"`
		CombinedLogIDs []int64 `json:"combined_log_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}
	if payload.Count < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "telling moet minimaal 1 zijn", nil)
		return
	}

	if err := h.service.UpdateCount(ctx, userID, id, payload.Count, payload.CombinedLogIDs); err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "PATCH /registraties", userID, start)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDeleteRegistratie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige registratie", nil)
		return
	}

	// DELETE mag zonder body; alleen een samengevoegde registratie
	// stuurt de onderliggende ids mee.
	var payload struct {
		CombinedLogIDs []int64 `json:"combined_log_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.DeleteRegistration(ctx, userID, id, payload.CombinedLogIDs); err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "DELETE /registraties", userID, start)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListClienten(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clienten, err := h.service.ActiveClients(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clienten": clienten})
}

func (h *Handler) handleListIncidentTypen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typen, err := h.service.ActiveIncidentTypes(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"incident_typen": typen})
}

func (h *Handler) handleStatsTypen(w http.ResponseWriter, r *http.Request) {
	h.writeStatistics(w, r, func(report StatisticsReport) any {
		return map[string]any{"per_type": report.PerType, "total_count": report.TotalCount}
	})
}

func (h *Handler) handleStatsCategorieen(w http.ResponseWriter, r *http.Request) {
	h.writeStatistics(w, r, func(report StatisticsReport) any {
		return map[string]any{"per_categorie": report.PerCategory, "total_count": report.TotalCount}
	})
}

func (h *Handler) handleStatsLocaties(w http.ResponseWriter, r *http.Request) {
	h.writeStatistics(w, r, func(report StatisticsReport) any {
		return map[string]any{"per_locatie": report.PerLocation, "total_count": report.TotalCount}
	})
}

func (h *Handler) handleStatsUren(w http.ResponseWriter, r *http.Request) {
	h.writeStatistics(w, r, func(report StatisticsReport) any {
		return map[string]any{"per_uur": report.PerHour, "total_count": report.TotalCount}
	})
}

func (h *Handler) writeStatistics(w http.ResponseWriter, r *http.Request, project func(StatisticsReport) any) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	from, to, err := ParseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig datumbereik", nil)
		return
	}

	report, err := h.service.Statistics(ctx, userID, from, to)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	logRequest(ctx, "GET /statistieken", userID, start)
	writeJSON(w, http.StatusOK, project(report))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, err := subjectAsUUID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "ongeldige identiteit", nil)
		return
	}

	from, to, err := ParseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig datumbereik", nil)
		return
	}

	logs, err := h.service.ListRegistrations(ctx, userID, from, to)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	period := export.ParsePeriod(r.URL.Query().Get("periode"))
	now := time.Now()

	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(period, "csv", now))
		if err := export.WriteCSV(w, logs); err != nil {
			log.Error().Err(err).Msg("csv-export mislukt")
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(period, "json", now))
		if err := export.WriteJSON(w, logs, now); err != nil {
			log.Error().Err(err).Msg("json-export mislukt")
		}
	case "xlsx":
		raw, err := export.WriteExcel(logs, period, now)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(period, "xlsx", now))
		_, _ = w.Write(raw)
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION", "onbekend exportformaat", nil)
		return
	}

	logRequest(ctx, "GET /export", userID, start)
}

// ParseDateRange leest start/eind uit de query; zonder parameters gelden
// de afgelopen 30 dagen. Een bereik waarvan de start na het einde ligt is
// een invoerfout, geen lege resultaatset. Gedeeld met de beheerroutes.
func ParseDateRange(r *http.Request) (string, string, error) {
	from := r.URL.Query().Get("start")
	to := r.URL.Query().Get("eind")

	now := time.Now()
	if to == "" {
		to = now.Format("2006-01-02")
	}
	if from == "" {
		from = now.AddDate(0, 0, -30).Format("2006-01-02")
	}

	if _, err := time.Parse("2006-01-02", from); err != nil {
		return "", "", err
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return "", "", err
	}
	if from > to {
		return "", "", errors.New("start ligt na eind")
	}
	return from, to, nil
}

func subjectAsUUID(ctx context.Context) (uuid.UUID, error) {
	return uuid.Parse(httpmiddleware.GetSubject(ctx))
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTypeInactive):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registratie niet gevonden", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("registratie handler fout")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "interne fout", nil)
}

func logRequest(ctx context.Context, label string, userID uuid.UUID, start time.Time) {
	logger := log.Ctx(ctx)
	if logger == nil {
		logger = &log.Logger
	}
	reqID := chimiddleware.GetReqID(ctx)
	logger.Info().Str("request_id", reqID).Str("user_id", userID.String()).Str("label", label).Dur("duration", time.Since(start)).Msg("registratie_request")
}

// JSON-envelop gelijk aan de rest van de API.
type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}
