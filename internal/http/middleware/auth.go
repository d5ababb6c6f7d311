package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Jeffreasy/MIC-Registratie/internal/auth"
	"github.com/Jeffreasy/MIC-Registratie/internal/repo"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRole    contextKey = "role"
)

// Auth valideert het JWT-toegangstoken en zet de claims in de context.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ontbreekt")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ongeldig")
				return
			}

			role := claims.Role
			if role != repo.RoleMedewerker && role != repo.RoleSuperAdmin {
				// Onbekende rol valt terug op de minst geprivilegieerde.
				role = repo.RoleMedewerker
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject leest het subject uit de context.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole leest de rol uit de context.
func GetRole(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyRole).(string)
	return val
}

// RequireRole eist de opgegeven rol. super_admin passeert elke controle.
func RequireRole(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r.Context())
			if strings.EqualFold(role, repo.RoleSuperAdmin) || strings.EqualFold(role, required) {
				next.ServeHTTP(w, r)
				return
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "geen toegang tot dit onderdeel")
		})
	}
}

// RequireSuperAdmin beperkt een route tot beheerders.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(repo.RoleSuperAdmin)(next)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
