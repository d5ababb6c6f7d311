package stats

import (
	"time"

	"github.com/google/uuid"
)

// Vaste categorieën. Alles daarbuiten valt onder CategoryOverig.
const (
	CategoryFysiek     = "fysiek"
	CategoryVerbaal    = "verbaal"
	CategoryEmotioneel = "emotioneel"
	CategorySociaal    = "sociaal"
	CategoryOverig     = "overig"
)

// TypeInfo zijn de typevelden die bij een logregel worden meegegeven.
type TypeInfo struct {
	Name                 string  `json:"name"`
	Category             *string `json:"category"`
	SeverityLevel        *int    `json:"severity_level"`
	ColorCode            *string `json:"color_code"`
	RequiresNotification bool    `json:"requires_notification"`
}

// ClientInfo is de cliëntrelatie bij een logregel.
type ClientInfo struct {
	FullName string `json:"full_name"`
}

// LogWithRelations is een incident_logs-rij verrijkt met cliënt en type.
// CombinedLogIDs is afgeleid en niet persistent: het verwijst naar de
// onderliggende rijen van een samengevoegde registratie.
type LogWithRelations struct {
	ID                     int64      `json:"id"`
	CreatedAt              time.Time  `json:"created_at"`
	LogDate                string     `json:"log_date"`
	UserID                 uuid.UUID  `json:"user_id"`
	ClientID               uuid.UUID  `json:"client_id"`
	IncidentTypeID         int64      `json:"incident_type_id"`
	Count                  int64      `json:"count"`
	Notes                  *string    `json:"notes"`
	Location               *string    `json:"location"`
	Severity               *int       `json:"severity"`
	TimeOfDay              *string    `json:"time_of_day"`
	TriggeredBy            *string    `json:"triggered_by"`
	InterventionSuccessful bool       `json:"intervention_successful"`
	Client                 ClientInfo `json:"client"`
	IncidentType           TypeInfo   `json:"incident_type"`
	CombinedLogIDs         []int64    `json:"combined_log_ids,omitempty"`
}

// TypeTotal is het totaal per incidenttype inclusief de bijdragende logs.
// Color is de opgeloste weergavekleur; afnemers gebruiken die als enige
// bron en leiden de kleur niet zelf opnieuw af.
type TypeTotal struct {
	Name          string             `json:"name"`
	Count         int64              `json:"count"`
	Category      *string            `json:"category"`
	SeverityLevel *int               `json:"severity_level"`
	ColorCode     *string            `json:"color_code"`
	Color         string             `json:"color"`
	Logs          []LogWithRelations `json:"logs"`
}

// CategoryTotal is het totaal per vaste categorie, met weergavekleur.
type CategoryTotal struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Color string `json:"color"`
}

// LocationTotal is het totaal per locatie.
type LocationTotal struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// HourTotal is het totaal per uur van de dag.
type HourTotal struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}
