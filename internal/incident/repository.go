package incident

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jeffreasy/MIC-Registratie/internal/db"
	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

var errNotFound = errors.New("niet gevonden")

const dbTimeout = 3 * time.Second

// Repository leest en schrijft incidentregistraties.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Client is een cliënt waarvoor geregistreerd kan worden.
type Client struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentType is een registreerbaar incidenttype.
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

// NewLog zijn de velden van een nieuw te registreren incident.
type NewLog struct {
	UserID                 uuid.UUID
	ClientID               uuid.UUID
	IncidentTypeID         int64
	LogDate                *string
	Count                  int64
	Notes                  *string
	Location               *string
	Severity               *int
	TimeOfDay              *string
	TriggeredBy            *string
	InterventionSuccessful bool
}

// Logregels gaan altijd samen met cliënt- en typevelden de deur uit;
// de aggregaties en de exports hebben die relaties nodig.
const logSelect = `
	SELECT l.id, l.created_at, to_char(l.log_date, 'YYYY-MM-DD'),
	       l.user_id, l.client_id, l.incident_type_id, l.count,
	       l.notes, l.location, l.severity,
	       to_char(l.time_of_day, 'HH24:MI'), l.triggered_by,
	       l.intervention_successful,
	       c.full_name,
	       t.name, t.category, t.severity_level, t.color_code, t.requires_notification
	FROM incident_logs l
	JOIN clients c ON c.id = l.client_id
	JOIN incident_types t ON t.id = l.incident_type_id`

func scanLog(row pgx.Row) (stats.LogWithRelations, error) {
	var l stats.LogWithRelations
	err := row.Scan(
		&l.ID, &l.CreatedAt, &l.LogDate,
		&l.UserID, &l.ClientID, &l.IncidentTypeID, &l.Count,
		&l.Notes, &l.Location, &l.Severity,
		&l.TimeOfDay, &l.TriggeredBy,
		&l.InterventionSuccessful,
		&l.Client.FullName,
		&l.IncidentType.Name, &l.IncidentType.Category, &l.IncidentType.SeverityLevel,
		&l.IncidentType.ColorCode, &l.IncidentType.RequiresNotification,
	)
	return l, err
}

func collectLogs(rows pgx.Rows) ([]stats.LogWithRelations, error) {
	defer rows.Close()

	var logs []stats.LogWithRelations
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListLogsByUserAndDate geeft de logs van één gebruiker op één datum,
// nieuwste eerst.
func (r *Repository) ListLogsByUserAndDate(ctx context.Context, userID uuid.UUID, date string) ([]stats.LogWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, logSelect+`
		WHERE l.user_id = $1 AND l.log_date = $2::date
		ORDER BY l.created_at DESC
	`, userID, date)
	if err != nil {
		return nil, err
	}
	return collectLogs(rows)
}

// ListLogsByUserAndRange geeft de logs van één gebruiker binnen een
// datumbereik (beide grenzen inclusief), nieuwste eerst.
func (r *Repository) ListLogsByUserAndRange(ctx context.Context, userID uuid.UUID, start, end string) ([]stats.LogWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, logSelect+`
		WHERE l.user_id = $1 AND l.log_date BETWEEN $2::date AND $3::date
		ORDER BY l.created_at DESC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collectLogs(rows)
}

// ListLogsByRange geeft de logs van alle gebruikers binnen een
// datumbereik. Alleen voor beheerrapportages.
func (r *Repository) ListLogsByRange(ctx context.Context, start, end string) ([]stats.LogWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, logSelect+`
		WHERE l.log_date BETWEEN $1::date AND $2::date
		ORDER BY l.created_at DESC
	`, start, end)
	if err != nil {
		return nil, err
	}
	return collectLogs(rows)
}

// GetLogByID haalt één logregel van een gebruiker op.
func (r *Repository) GetLogByID(ctx context.Context, userID uuid.UUID, id int64) (stats.LogWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	l, err := scanLog(r.db.QueryRow(ctx, logSelect+`
		WHERE l.id = $1 AND l.user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return stats.LogWithRelations{}, errNotFound
	}
	return l, err
}

// InsertLog registreert een nieuw incident en geeft de volledige rij
// met relaties terug. Zonder datum geldt vandaag.
func (r *Repository) InsertLog(ctx context.Context, in NewLog) (stats.LogWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO incident_logs
			(user_id, client_id, incident_type_id, log_date, count, notes,
			 location, severity, time_of_day, triggered_by, intervention_successful)
		VALUES ($1, $2, $3, COALESCE($4::date, CURRENT_DATE), $5, $6, $7, $8, $9::time, $10, $11)
		RETURNING id
	`, in.UserID, in.ClientID, in.IncidentTypeID, in.LogDate, in.Count, in.Notes,
		in.Location, in.Severity, in.TimeOfDay, in.TriggeredBy, in.InterventionSuccessful).Scan(&id)
	if err != nil {
		return stats.LogWithRelations{}, err
	}

	return r.GetLogByID(ctx, in.UserID, id)
}

// UpdateLogCount wijzigt de telling van één logregel. De rij moet van
// de gebruiker zelf zijn.
func (r *Repository) UpdateLogCount(ctx context.Context, userID uuid.UUID, id, count int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE incident_logs SET count = $3
		WHERE id = $1 AND user_id = $2
	`, id, userID, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// DeleteLog verwijdert één logregel van de gebruiker.
func (r *Repository) DeleteLog(ctx context.Context, userID uuid.UUID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM incident_logs WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// UpdateGroupedCount werkt een samengevoegde registratie bij: de eerste
// onderliggende rij krijgt de nieuwe telling, de overige rijen
// verdwijnen. Alles in één transactie zodat de groep nooit half
// bijgewerkt achterblijft.
func (r *Repository) UpdateGroupedCount(ctx context.Context, userID uuid.UUID, ids []int64, count int64) error {
	if len(ids) == 0 {
		return errNotFound
	}

	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE incident_logs SET count = $3
			WHERE id = $1 AND user_id = $2
		`, ids[0], userID, count)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound
		}

		if len(ids) > 1 {
			if _, err := tx.Exec(ctx, `
				DELETE FROM incident_logs WHERE id = ANY($1) AND user_id = $2
			`, ids[1:], userID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteGrouped verwijdert alle onderliggende rijen van een
// samengevoegde registratie in één transactie.
func (r *Repository) DeleteGrouped(ctx context.Context, userID uuid.UUID, ids []int64) error {
	if len(ids) == 0 {
		return errNotFound
	}

	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM incident_logs WHERE id = ANY($1) AND user_id = $2
		`, ids, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound
		}
		return nil
	})
}

// ListActiveClients geeft de actieve cliënten op naam gesorteerd.
func (r *Repository) ListActiveClients(ctx context.Context) ([]Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, is_active, created_at
		FROM clients
		WHERE is_active
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

// ListActiveIncidentTypes geeft de actieve typen, gesorteerd op
// categorie en naam zoals het registratiescherm ze toont.
func (r *Repository) ListActiveIncidentTypes(ctx context.Context) ([]IncidentType, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, category, severity_level,
		       requires_notification, color_code, is_active
		FROM incident_types
		WHERE is_active
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

// GetIncidentType haalt één incidenttype op.
func (r *Repository) GetIncidentType(ctx context.Context, id int64) (IncidentType, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var t IncidentType
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, category, severity_level,
		       requires_notification, color_code, is_active
		FROM incident_types
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.SeverityLevel,
		&t.RequiresNotification, &t.ColorCode, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return IncidentType{}, errNotFound
	}
	return t, err
}
