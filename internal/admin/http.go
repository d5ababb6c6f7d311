package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Jeffreasy/MIC-Registratie/internal/incident"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
	"github.com/Jeffreasy/MIC-Registratie/internal/service"
)

// Handler verzorgt de beheerroutes. De router laat alleen super_admin
// hier binnen.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/clienten", func(r chi.Router) {
		r.Get("/", h.handleListClienten)
		r.Post("/", h.handleCreateClient)
		r.Patch("/{id}", h.handleUpdateClient)
		r.Delete("/{id}", h.handleDeactivateClient)
	})

	r.Route("/incident-typen", func(r chi.Router) {
		r.Get("/", h.handleListTypen)
		r.Post("/", h.handleCreateType)
		r.Patch("/{id}", h.handleUpdateType)
		r.Delete("/{id}", h.handleDeactivateType)
	})

	r.Route("/gebruikers", func(r chi.Router) {
		r.Get("/", h.handleListAccounts)
		r.Post("/", h.handleCreateUser)
		r.Patch("/{id}/rol", h.handleUpdateRole)
		r.Patch("/{id}/actief", h.handleSetActive)
		r.Post("/wachtwoord-reset", h.handleResetPassword)
	})

	r.Route("/statistieken", func(r chi.Router) {
		r.Get("/dagelijks", h.handleDailyTotals)
		r.Get("/maandelijks", h.handleMonthlySummary)
		r.Get("/overzicht", h.handleOverview)
	})
}

func (h *Handler) handleListClienten(w http.ResponseWriter, r *http.Request) {
	clienten, err := h.service.ListClients(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clienten": clienten})
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	client, err := h.service.CreateClient(r.Context(), payload.FullName)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"client": client})
}

func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige cliënt", nil)
		return
	}

	var payload struct {
		FullName *string `json:"full_name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.UpdateClient(r.Context(), id, payload.FullName, payload.IsActive); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDeactivateClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige cliënt", nil)
		return
	}

	if err := h.service.DeactivateClient(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "gedeactiveerd"})
}

func (h *Handler) handleListTypen(w http.ResponseWriter, r *http.Request) {
	typen, err := h.service.ListIncidentTypes(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"incident_typen": typen})
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var payload TypeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	typ, err := h.service.CreateIncidentType(r.Context(), payload)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"incident_type": typ})
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig type", nil)
		return
	}

	var payload struct {
		TypeInput
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.UpdateIncidentType(r.Context(), id, payload.TypeInput, payload.IsActive); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDeactivateType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig type", nil)
		return
	}

	if err := h.service.DeactivateIncidentType(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "gedeactiveerd"})
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gebruikers": accounts})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	profile, err := h.service.CreateUser(r.Context(), payload.Email, payload.Password, payload.FullName, payload.Role)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"gebruiker": map[string]any{
		"id":        profile.ID,
		"email":     profile.Email,
		"full_name": profile.FullName,
		"role":      profile.Role,
	}})
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige gebruiker", nil)
		return
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.UpdateRole(r.Context(), id, payload.Role); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige gebruiker", nil)
		return
	}

	var payload struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.SetAccountActive(r.Context(), id, payload.IsActive); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldige payload", nil)
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Email, payload.NewPassword); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDailyTotals(w http.ResponseWriter, r *http.Request) {
	from, to, err := incident.ParseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig datumbereik", nil)
		return
	}

	totals, err := h.service.DailyTotals(r.Context(), from, to)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dagelijks": totals})
}

func (h *Handler) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.MonthlySummary(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maandelijks": totals})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	from, to, err := incident.ParseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ongeldig datumbereik", nil)
		return
	}

	report, err := h.service.Overview(r.Context(), from, to)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, errNotFound), errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "rij niet gevonden", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("beheer handler fout")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "interne fout", nil)
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
