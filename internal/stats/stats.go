// Package stats bevat de pure aggregaties over incidentregistraties:
// samenvoegen van logs tot registraties en totalen per type, categorie,
// locatie en uur. Alle functies zijn deterministisch, verdragen lege
// invoer en vullen ontbrekende optionele velden met vaste defaults.
package stats

import (
	"fmt"
	"sort"
	"strings"
)

// Placeholder voor een ontbrekende locatie in de groepeersleutel. Twee
// logs zonder locatie voor dezelfde cliënt/type/datum horen samen te
// vallen, dus nil wordt een letterlijke waarde en geen null.
const noLocationKey = "none"

// Label voor een ontbrekende locatie in weergave en totalen.
const UnknownLocation = "Onbekend"

// RegistrationKey bouwt de sleutel waarop logs tot één registratie
// worden samengevoegd: cliënt + type + locatie + datum.
func RegistrationKey(log LogWithRelations) string {
	location := noLocationKey
	if log.Location != nil && *log.Location != "" {
		location = *log.Location
	}
	return fmt.Sprintf("%s_%d_%s_%s", log.ClientID, log.IncidentTypeID, location, log.LogDate)
}

// GroupByRegistrationKey voegt logs met dezelfde registratiesleutel samen
// tot één rij met de opgetelde telling. De eerste rij van een groep is de
// basis; CombinedLogIDs verwijst naar alle onderliggende rijen zodat een
// bewerking of verwijdering op alle leden kan uitwaaieren. Een groep met
// precies één lid gaat ongewijzigd door. De uitvoer partitioneert de
// invoer exact: geen rij valt weg of telt dubbel.
func GroupByRegistrationKey(logs []LogWithRelations) []LogWithRelations {
	groups := make(map[string][]LogWithRelations)
	var order []string

	for _, log := range logs {
		key := RegistrationKey(log)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], log)
	}

	out := make([]LogWithRelations, 0, len(order))
	for _, key := range order {
		group := groups[key]
		base := group[0]
		if len(group) > 1 {
			var total int64
			ids := make([]int64, 0, len(group))
			for _, member := range group {
				total += member.Count
				ids = append(ids, member.ID)
			}
			base.Count = total
			base.CombinedLogIDs = ids
		}
		out = append(out, base)
	}

	return out
}

// TotalsByIncidentType telt per incidenttype, met alle actieve typen
// vooraf op nul gezet zodat ook ongebruikte typen zichtbaar blijven.
// Sortering: eerst categorie (nil sorteert als lege string, dus vooraan),
// dan naam.
func TotalsByIncidentType(logs []LogWithRelations, activeTypes []TypeInfo) []TypeTotal {
	totals := make(map[string]*TypeTotal)
	var order []string

	add := func(info TypeInfo) *TypeTotal {
		if t, ok := totals[info.Name]; ok {
			return t
		}
		t := &TypeTotal{
			Name:          info.Name,
			Category:      info.Category,
			SeverityLevel: info.SeverityLevel,
			ColorCode:     info.ColorCode,
			Color:         ColorForIncidentType(info),
		}
		totals[info.Name] = t
		order = append(order, info.Name)
		return t
	}

	for _, typ := range activeTypes {
		add(typ)
	}

	for _, log := range logs {
		t := add(log.IncidentType)
		t.Count += log.Count
		t.Logs = append(t.Logs, log)
	}

	out := make([]TypeTotal, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci := categoryOrEmpty(out[i].Category)
		cj := categoryOrEmpty(out[j].Category)
		if ci != cj {
			return ci < cj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out
}

// TotalsByCategory telt per vaste categorie. Een log zonder categorie of
// met een onbekende categorie telt mee onder overig. Met filtered=true
// vallen lege categorieën weg (grafiekweergave); zonder filter blijven
// alle vijf staan (beheertabellen).
func TotalsByCategory(logs []LogWithRelations, filtered bool) []CategoryTotal {
	buckets := map[string]int64{
		CategoryFysiek:     0,
		CategoryVerbaal:    0,
		CategoryEmotioneel: 0,
		CategorySociaal:    0,
		CategoryOverig:     0,
	}

	for _, log := range logs {
		category := CategoryOverig
		if log.IncidentType.Category != nil {
			if _, ok := buckets[*log.IncidentType.Category]; ok {
				category = *log.IncidentType.Category
			}
		}
		buckets[category] += log.Count
	}

	out := make([]CategoryTotal, 0, 5)
	for _, name := range []string{CategoryFysiek, CategoryVerbaal, CategoryEmotioneel, CategorySociaal, CategoryOverig} {
		if filtered && buckets[name] == 0 {
			continue
		}
		out = append(out, CategoryTotal{Name: name, Count: buckets[name], Color: ColorForCategory(&name)})
	}

	return out
}

// TotalsByLocation telt per locatie; nil of leeg wordt "Onbekend".
// Gesorteerd op aantal aflopend, bij gelijkspel op naam.
func TotalsByLocation(logs []LogWithRelations) []LocationTotal {
	totals := make(map[string]int64)

	for _, log := range logs {
		name := UnknownLocation
		if log.Location != nil && *log.Location != "" {
			name = *log.Location
		}
		totals[name] += log.Count
	}

	out := make([]LocationTotal, 0, len(totals))
	for name, count := range totals {
		out = append(out, LocationTotal{Name: name, Count: count})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})

	return out
}

// TotalsByHourOfDay geeft altijd precies 24 emmers "00:00" t/m "23:00".
// Logs zonder tijdstip tellen nergens mee; ze belanden niet in uur 0.
func TotalsByHourOfDay(logs []LogWithRelations) []HourTotal {
	counts := make(map[string]int64, 24)

	for _, log := range logs {
		if log.TimeOfDay == nil || len(*log.TimeOfDay) < 2 {
			continue
		}
		hour := (*log.TimeOfDay)[:2]
		if hour < "00" || hour > "23" {
			continue
		}
		counts[hour] += log.Count
	}

	out := make([]HourTotal, 0, 24)
	for i := 0; i < 24; i++ {
		hour := fmt.Sprintf("%02d", i)
		out = append(out, HourTotal{Hour: hour + ":00", Count: counts[hour]})
	}

	return out
}

// CategoryLabel geeft de weergavenaam van een categorie.
func CategoryLabel(category *string) string {
	if category == nil {
		return "Overig"
	}
	switch *category {
	case CategoryFysiek:
		return "Fysiek"
	case CategoryVerbaal:
		return "Verbaal"
	case CategoryEmotioneel:
		return "Emotioneel"
	case CategorySociaal:
		return "Sociaal"
	default:
		return "Overig"
	}
}

func categoryOrEmpty(category *string) string {
	if category == nil {
		return ""
	}
	return *category
}
