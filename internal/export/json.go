package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

// Metadata beschrijft een JSON-export: wanneer hij is gemaakt, hoeveel
// rijen hij bevat en welke velden per rij aanwezig zijn.
type Metadata struct {
	ExportDate  time.Time `json:"export_date"`
	RecordCount int       `json:"record_count"`
	Fields      []string  `json:"fields"`
}

// Envelope is het volledige JSON-exportdocument.
type Envelope struct {
	Metadata Metadata                 `json:"metadata"`
	Data     []stats.LogWithRelations `json:"data"`
}

// Veldnamen van een logregel in de JSON-export, voor de metadata.
var jsonFields = []string{
	"id", "created_at", "log_date", "user_id", "client_id",
	"incident_type_id", "count", "notes", "location", "severity",
	"time_of_day", "triggered_by", "intervention_successful",
	"client", "incident_type",
}

// WriteJSON schrijft de registraties als JSON-document met metadata.
// De rijen blijven onbewerkt zodat de export weer inleesbaar is.
func WriteJSON(w io.Writer, logs []stats.LogWithRelations, now time.Time) error {
	if logs == nil {
		logs = []stats.LogWithRelations{}
	}
	doc := Envelope{
		Metadata: Metadata{
			ExportDate:  now.UTC(),
			RecordCount: len(logs),
			Fields:      jsonFields,
		},
		Data: logs,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
