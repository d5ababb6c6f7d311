package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

const sheetName = "Incident Logs"

// Vaste rapportkleuren (ARGB zonder alfa, zoals excelize ze verwacht).
const (
	colorHeaderBG = "2B5A9B"
	colorTitleBG  = "EFF3FA"
	colorHigh     = "B22222" // ernst 4-5 en mislukte interventie
	colorMedium   = "FF8C00" // ernst 3
	colorLow      = "008000" // ernst 1-2 en geslaagde interventie
	colorZebra    = "F5F5F5"
	colorFooter   = "888888"
)

var columnWidths = []float64{15, 20, 25, 15, 15, 12, 10, 15, 15, 18, 40}

// WriteExcel bouwt het volledige Excel-rapport: titelblok, gestylde
// tabel met wisselende rijkleuren, een samenvatting per categorie en
// ernst, en een voettekst met vertrouwelijkheidsmelding.
func WriteExcel(logs []stats.LogWithRelations, period Period, now time.Time) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("werkblad aanmaken: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := writeTitleBlock(f, period, now); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeaderRow(f); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDataRows(f, logs); err != nil {
		f.Close()
		return nil, err
	}
	footerRow, err := writeSummary(f, logs, len(logs)+5)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeFooter(f, footerRow+2); err != nil {
		f.Close()
		return nil, err
	}

	// Kopregel bevriezen zodat die bij scrollen zichtbaar blijft.
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      3,
		TopLeftCell: "A4",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("kopregel bevriezen: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("werkboek wegschrijven: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("werkboek sluiten: %w", err)
	}

	return buf.Bytes(), nil
}

func writeTitleBlock(f *excelize.File, period Period, now time.Time) error {
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("titelcellen samenvoegen: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A1", "MIC Incidenten Rapport - "+PeriodTitle(period)); err != nil {
		return fmt.Errorf("titel schrijven: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Bold: true, Color: colorHeaderBG},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorTitleBG}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("titelstijl aanmaken: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle); err != nil {
		return fmt.Errorf("titelstijl toepassen: %w", err)
	}

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return fmt.Errorf("datumcellen samenvoegen: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A2", "Gegenereerd op: "+now.Format("02-01-2006 15:04")); err != nil {
		return fmt.Errorf("datum schrijven: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Italic: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("datumstijl aanmaken: %w", err)
	}
	return f.SetCellStyle(sheetName, "A2", lastCol+"2", dateStyle)
}

func writeHeaderRow(f *excelize.File) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12, Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorHeaderBG}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("kopstijl aanmaken: %w", err)
	}

	for i, header := range Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return fmt.Errorf("celnaam bepalen: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("kopcel %s schrijven: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("kopstijl %s toepassen: %w", cell, err)
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("kolomnaam bepalen: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("kolombreedte zetten: %w", err)
		}
	}
	return nil
}

func writeDataRows(f *excelize.File, logs []stats.LogWithRelations) error {
	for i, log := range logs {
		row := i + 4
		fill := "FFFFFF"
		if row%2 == 0 {
			fill = colorZebra
		}

		values := rowValues(log)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("celnaam bepalen: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("cel %s schrijven: %w", cell, err)
			}

			style := excelize.Style{
				Font: &excelize.Font{Size: 10},
				Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
				Border: []excelize.Border{
					{Type: "left", Color: "E0E0E0", Style: 1},
					{Type: "top", Color: "E0E0E0", Style: 1},
					{Type: "bottom", Color: "E0E0E0", Style: 1},
					{Type: "right", Color: "E0E0E0", Style: 1},
				},
			}

			switch col {
			case 5: // Ernst
				style.Font.Color, style.Font.Bold = severityColor(log.Severity)
				style.Alignment = &excelize.Alignment{Horizontal: "center"}
			case 9: // Interventie Succesvol
				if log.InterventionSuccessful {
					style.Font.Color = colorLow
				} else {
					style.Font.Color = colorHigh
				}
				style.Alignment = &excelize.Alignment{Horizontal: "center"}
			case 10: // Notities
				style.Alignment = &excelize.Alignment{WrapText: true, Vertical: "top"}
			}

			styleID, err := f.NewStyle(&style)
			if err != nil {
				return fmt.Errorf("rijstijl aanmaken: %w", err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
				return fmt.Errorf("rijstijl %s toepassen: %w", cell, err)
			}
		}
	}
	return nil
}

func severityColor(severity *int) (color string, bold bool) {
	if severity == nil {
		return colorLow, false
	}
	switch {
	case *severity >= 4:
		return colorHigh, true
	case *severity == 3:
		return colorMedium, false
	default:
		return colorLow, false
	}
}

// writeSummary telt per categorie en per ernst en schrijft beide
// tabellen naast elkaar. Geeft de eerste vrije rij eronder terug.
func writeSummary(f *excelize.File, logs []stats.LogWithRelations, startRow int) (int, error) {
	categories := make(map[string]int64)
	severities := make(map[string]int64)
	for _, log := range logs {
		categories[stats.CategoryLabel(log.IncidentType.Category)] += log.Count
		key := "Onbekend"
		if log.Severity != nil {
			key = fmt.Sprintf("Ernst %d", *log.Severity)
		}
		severities[key] += log.Count
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Bold: true, Color: colorHeaderBG},
	})
	if err != nil {
		return 0, fmt.Errorf("samenvattingsstijl aanmaken: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("samenvattingsstijl aanmaken: %w", err)
	}

	titleCell := fmt.Sprintf("A%d", startRow)
	if err := f.MergeCell(sheetName, titleCell, fmt.Sprintf("E%d", startRow)); err != nil {
		return 0, fmt.Errorf("samenvattingscellen samenvoegen: %w", err)
	}
	if err := f.SetCellValue(sheetName, titleCell, "Incidenten Samenvatting"); err != nil {
		return 0, fmt.Errorf("samenvattingstitel schrijven: %w", err)
	}
	if err := f.SetCellStyle(sheetName, titleCell, titleCell, titleStyle); err != nil {
		return 0, fmt.Errorf("samenvattingsstijl toepassen: %w", err)
	}

	catHeader := fmt.Sprintf("A%d", startRow+1)
	if err := f.SetCellValue(sheetName, catHeader, "Aantal per categorie:"); err != nil {
		return 0, fmt.Errorf("categoriekop schrijven: %w", err)
	}
	if err := f.SetCellStyle(sheetName, catHeader, catHeader, boldStyle); err != nil {
		return 0, fmt.Errorf("categoriekopstijl toepassen: %w", err)
	}
	sevHeader := fmt.Sprintf("D%d", startRow+1)
	if err := f.SetCellValue(sheetName, sevHeader, "Aantal per ernst:"); err != nil {
		return 0, fmt.Errorf("ernstkop schrijven: %w", err)
	}
	if err := f.SetCellStyle(sheetName, sevHeader, sevHeader, boldStyle); err != nil {
		return 0, fmt.Errorf("ernstkopstijl toepassen: %w", err)
	}

	// Vaste volgorde voor een reproduceerbaar rapport.
	catRow := startRow + 2
	for _, label := range []string{"Fysiek", "Verbaal", "Emotioneel", "Sociaal", "Overig"} {
		count, ok := categories[label]
		if !ok {
			continue
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", catRow), label); err != nil {
			return 0, fmt.Errorf("categorierij schrijven: %w", err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", catRow), count); err != nil {
			return 0, fmt.Errorf("categorierij schrijven: %w", err)
		}
		catRow++
	}

	sevRow := startRow + 2
	for _, label := range []string{"Ernst 1", "Ernst 2", "Ernst 3", "Ernst 4", "Ernst 5", "Onbekend"} {
		count, ok := severities[label]
		if !ok {
			continue
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("D%d", sevRow), label); err != nil {
			return 0, fmt.Errorf("ernstrij schrijven: %w", err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("E%d", sevRow), count); err != nil {
			return 0, fmt.Errorf("ernstrij schrijven: %w", err)
		}
		sevRow++
	}

	if sevRow > catRow {
		return sevRow, nil
	}
	return catRow, nil
}

func writeFooter(f *excelize.File, row int) error {
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))

	footerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 8, Italic: true, Color: colorFooter},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("voettekststijl aanmaken: %w", err)
	}
	warnStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 8, Bold: true, Color: colorHigh},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("voettekststijl aanmaken: %w", err)
	}

	footerCell := fmt.Sprintf("A%d", row)
	if err := f.MergeCell(sheetName, footerCell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
		return fmt.Errorf("voettekstcellen samenvoegen: %w", err)
	}
	if err := f.SetCellValue(sheetName, footerCell, "MIC-Registratie | Vertrouwelijk document"); err != nil {
		return fmt.Errorf("voettekst schrijven: %w", err)
	}
	if err := f.SetCellStyle(sheetName, footerCell, footerCell, footerStyle); err != nil {
		return fmt.Errorf("voettekststijl toepassen: %w", err)
	}

	warnCell := fmt.Sprintf("A%d", row+1)
	if err := f.MergeCell(sheetName, warnCell, fmt.Sprintf("%s%d", lastCol, row+1)); err != nil {
		return fmt.Errorf("waarschuwingscellen samenvoegen: %w", err)
	}
	if err := f.SetCellValue(sheetName, warnCell, "Dit document bevat gevoelige informatie en mag alleen worden gedeeld met geautoriseerde medewerkers."); err != nil {
		return fmt.Errorf("waarschuwing schrijven: %w", err)
	}
	return f.SetCellStyle(sheetName, warnCell, warnCell, warnStyle)
}
