// Package export schrijft incidentregistraties weg als CSV, JSON of
// Excel. De kolomindeling is voor alle formaten gelijk zodat een
// rapport er hetzelfde uitziet ongeacht het gekozen formaat.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

// Period bepaalt de rapporttitel en de bestandsnaam.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Headers van het tabelgedeelte, in rapportvolgorde.
var Headers = []string{
	"Datum",
	"Cliënt",
	"Type Incident",
	"Categorie",
	"Locatie",
	"Ernst",
	"Aantal",
	"Tijdstip",
	"Trigger",
	"Interventie Succesvol",
	"Notities",
}

// Filename bouwt de bestandsnaam voor een export, zonder pad.
func Filename(period Period, ext string, now time.Time) string {
	return fmt.Sprintf("mic-incidenten-%s-%s.%s", period, now.Format("2006-01-02"), ext)
}

// PeriodTitle geeft de Nederlandse rapporttitel van een periode.
func PeriodTitle(period Period) string {
	switch period {
	case PeriodMonth:
		return "Afgelopen Maand"
	case PeriodYear:
		return "Afgelopen Jaar"
	default:
		return "Alle Incidenten"
	}
}

// ParsePeriod valideert een periode uit de querystring; alles wat niet
// month of year is telt als all.
func ParsePeriod(raw string) Period {
	switch raw {
	case string(PeriodMonth):
		return PeriodMonth
	case string(PeriodYear):
		return PeriodYear
	default:
		return PeriodAll
	}
}

// rowValues zet één logregel om naar de kolomwaarden van Headers.
func rowValues(log stats.LogWithRelations) []string {
	return []string{
		formatDateNL(log.LogDate),
		log.Client.FullName,
		log.IncidentType.Name,
		stats.CategoryLabel(log.IncidentType.Category),
		stringOrEmpty(log.Location),
		severityValue(log.Severity),
		strconv.FormatInt(log.Count, 10),
		stringOrEmpty(log.TimeOfDay),
		stringOrEmpty(log.TriggeredBy),
		boolNL(log.InterventionSuccessful),
		stringOrEmpty(log.Notes),
	}
}

// formatDateNL zet een ISO-datum om naar dd-mm-jjjj; een waarde die
// niet parseert gaat ongewijzigd door.
func formatDateNL(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("02-01-2006")
}

func severityValue(severity *int) string {
	if severity == nil {
		return ""
	}
	return strconv.Itoa(*severity)
}

func boolNL(v bool) string {
	if v {
		return "Ja"
	}
	return "Nee"
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
