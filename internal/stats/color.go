package stats

// Vaste kleuren per categorie, gelijk aan de grafieklegenda's.
var categoryColors = map[string]string{
	CategoryFysiek:     "#ef4444", // rood
	CategoryVerbaal:    "#3b82f6", // blauw
	CategoryEmotioneel: "#eab308", // geel
	CategorySociaal:    "#22c55e", // groen
	CategoryOverig:     "#a3a3a3", // grijs
}

// DefaultColor wanneer geen enkel veld een kleur oplevert.
const DefaultColor = "#a3a3a3"

// ColorForIncidentType bepaalt de weergavekleur van een incidenttype.
// Volgorde: expliciete color_code, anders categorie, anders ernst,
// anders grijs. Pure functie zodat hetzelfde type overal dezelfde kleur
// krijgt.
func ColorForIncidentType(t TypeInfo) string {
	if t.ColorCode != nil && *t.ColorCode != "" {
		return *t.ColorCode
	}

	if t.Category != nil {
		if color, ok := categoryColors[*t.Category]; ok && *t.Category != CategoryOverig {
			return color
		}
	}

	if t.SeverityLevel != nil {
		switch *t.SeverityLevel {
		case 5:
			return "#ef4444" // rood
		case 4:
			return "#f97316" // oranje
		case 3:
			return "#eab308" // geel
		case 2:
			return "#3b82f6" // blauw
		case 1:
			return "#22c55e" // groen
		}
	}

	return DefaultColor
}

// ColorForCategory geeft de vaste kleur van een categorie, grijs voor
// onbekende of ontbrekende categorieën.
func ColorForCategory(category *string) string {
	if category == nil {
		return DefaultColor
	}
	if color, ok := categoryColors[*category]; ok {
		return color
	}
	return DefaultColor
}
