package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Jeffreasy/MIC-Registratie/internal/stats"
)

// WriteCSV schrijft de registraties als CSV met kopregel. Het resultaat
// opent direct in een spreadsheet, dus datums en booleans staan in de
// Nederlandse weergave.
func WriteCSV(w io.Writer, logs []stats.LogWithRelations) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("csv-kopregel schrijven: %w", err)
	}
	for _, log := range logs {
		if err := cw.Write(rowValues(log)); err != nil {
			return fmt.Errorf("csv-rij schrijven: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
