package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNotFound = errors.New("niet gevonden")

const dbTimeout = 3 * time.Second

// Repository geeft beheerders toegang tot cliënten, incidenttypen,
// accounts en de samenvattende views.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Client zoals beheer hem ziet, inclusief gedeactiveerde rijen.
type Client struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentType zoals beheer hem ziet.
type IncidentType struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Description          *string `json:"description"`
	Category             *string `json:"category"`
	SeverityLevel        *int    `json:"severity_level"`
	RequiresNotification bool    `json:"requires_notification"`
	ColorCode            *string `json:"color_code"`
	IsActive             bool    `json:"is_active"`
}

// TypeInput zijn de muteerbare velden van een incidenttype.
type TypeInput struct {
	Name                 string  `json:"name"`
	Description          *string `json:"description"`
	Category             *string `json:"category"`
	SeverityLevel        *int    `json:"severity_level"`
	RequiresNotification bool    `json:"requires_notification"`
	ColorCode            *string `json:"color_code"`
}

// Account is een profielrij zonder wachtwoordhash.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Email     *string    `json:"email"`
	FullName  *string    `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
}

// DailyTotal is één rij uit de daily_totals-view.
type DailyTotal struct {
	LogDate        string    `json:"log_date"`
	UserID         uuid.UUID `json:"user_id"`
	IncidentTypeID int64     `json:"incident_type_id"`
	Category       *string   `json:"category"`
	TotalCount     int64     `json:"total_count"`
}

// MonthlyTotal is één rij uit de monthly_summary-view.
type MonthlyTotal struct {
	Month      string    `json:"month"`
	UserID     uuid.UUID `json:"user_id"`
	TotalCount int64     `json:"total_count"`
}

// ListClients geeft alle cliënten, ook gedeactiveerde.
func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, is_active, created_at
		FROM clients
		ORDER BY full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FullName, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateClient voegt een cliënt toe.
func (r *Repository) CreateClient(ctx context.Context, fullName string) (Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c := Client{ID: uuid.New(), FullName: fullName}
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (id, full_name)
		VALUES ($1, $2)
		RETURNING is_active, created_at
	`, c.ID, c.FullName).Scan(&c.IsActive, &c.CreatedAt)
	return c, err
}

// UpdateClient past naam en/of actiefstatus aan.
func (r *Repository) UpdateClient(ctx context.Context, id uuid.UUID, fullName *string, isActive *bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE clients
		SET full_name = COALESCE($2, full_name),
		    is_active = COALESCE($3, is_active)
		WHERE id = $1
	`, id, fullName, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// DeactivateClient zet een cliënt op inactief. Verwijderen gebeurt
// nooit hard; registraties blijven verwijzen naar de rij.
func (r *Repository) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE clients SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// ListIncidentTypes geeft alle typen, ook gedeactiveerde.
func (r *Repository) ListIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, category, severity_level,
		       requires_notification, color_code, is_active
		FROM incident_types
		ORDER BY COALESCE(category, ''), lower(name)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []IncidentType
	for rows.Next() {
		var t IncidentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.SeverityLevel,
			&t.RequiresNotification, &t.ColorCode, &t.IsActive); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// CreateIncidentType voegt een type toe.
func (r *Repository) CreateIncidentType(ctx context.Context, in TypeInput) (IncidentType, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	t := IncidentType{
		Name:                 in.Name,
		Description:          in.Description,
		Category:             in.Category,
		SeverityLevel:        in.SeverityLevel,
		RequiresNotification: in.RequiresNotification,
		ColorCode:            in.ColorCode,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO incident_types (name, description, category, severity_level, requires_notification, color_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active
	`, in.Name, in.Description, in.Category, in.SeverityLevel, in.RequiresNotification, in.ColorCode).Scan(&t.ID, &t.IsActive)
	return t, err
}

// UpdateIncidentType werkt alle muteerbare velden bij.
func (r *Repository) UpdateIncidentType(ctx context.Context, id int64, in TypeInput, isActive *bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE incident_types
		SET name = $2,
		    description = $3,
		    category = $4,
		    severity_level = $5,
		    requires_notification = $6,
		    color_code = $7,
		    is_active = COALESCE($8, is_active)
		WHERE id = $1
	`, id, in.Name, in.Description, in.Category, in.SeverityLevel, in.RequiresNotification, in.ColorCode, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// DeactivateIncidentType zet een type op inactief; bestaande
// registraties blijven geldig.
func (r *Repository) DeactivateIncidentType(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE incident_types SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// ListAccounts geeft alle profielen zonder wachtwoordhash.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, email, full_name, role, is_active, created_at
		FROM profiles
		ORDER BY lower(COALESCE(email, ''))
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName, &a.Role, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateRole wijzigt de rol van een account.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1
	`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// SetAccountActive activeert of deactiveert een account.
func (r *Repository) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// DailyTotals leest de daily_totals-view over een datumbereik.
func (r *Repository) DailyTotals(ctx context.Context, start, end string) ([]DailyTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT to_char(log_date, 'YYYY-MM-DD'), user_id, incident_type_id, category, total_count
		FROM daily_totals
		WHERE log_date BETWEEN $1::date AND $2::date
		ORDER BY log_date, user_id
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.LogDate, &t.UserID, &t.IncidentTypeID, &t.Category, &t.TotalCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// MonthlySummary leest de monthly_summary-view.
func (r *Repository) MonthlySummary(ctx context.Context) ([]MonthlyTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT to_char(month, 'YYYY-MM'), user_id, total_count
		FROM monthly_summary
		ORDER BY month DESC, user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []MonthlyTotal
	for rows.Next() {
		var t MonthlyTotal
		if err := rows.Scan(&t.Month, &t.UserID, &t.TotalCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
