package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/aimd/internal/analysis"
)

// WriteCSV writes one row per sample: time, potential, kinetic, total,
// temperature.
func WriteCSV(w io.Writer, s analysis.Series) error {
	cw := csv.NewWriter(w)
	header := []string{"time_fs", "potential", "kinetic", "total", "temperature_k"}
	if err := cw.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := 0; i < s.Len(); i++ {
		row := []string{
			format(s.Time[i]),
			format(s.Potential[i]),
			format(s.Kinetic[i]),
			format(s.Total[i]),
			format(s.Temperature[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, s analysis.Series) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, s)
}

type ExportData struct {
	Summary *analysis.Summary  `json:"summary,omitempty"`
	Times   []float64          `json:"times"`
	Total   []float64          `json:"total"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// WriteJSON writes the run summary with the total energy series.
func WriteJSON(w io.Writer, s analysis.Series, summary *analysis.Summary, metrics map[string]float64) error {
	data := ExportData{
		Summary: summary,
		Times:   s.Time,
		Total:   s.Total,
		Metrics: metrics,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
