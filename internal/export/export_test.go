package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/san-kum/aimd/internal/analysis"
)

func sampleSeries() analysis.Series {
	return analysis.Series{
		Time:        []float64{0, 0.5, 1.0},
		Potential:   []float64{-2006.1, -2006.2, -2006.15},
		Kinetic:     []float64{0.0374, 0.1374, 0.0874},
		Total:       []float64{-2006.0626, -2006.0626, -2006.0626},
		Temperature: []float64{300, 1102.3, 701.2},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSeries()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "time_fs" || len(rows[0]) != 5 {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[2][0] != "0.500000" || rows[2][1] != "-2006.200000" {
		t.Errorf("unexpected row %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	metrics := map[string]float64{"energy_drift": 0}
	if err := WriteJSON(&buf, sampleSeries(), nil, metrics); err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Total) != 3 || got.Metrics["energy_drift"] != 0 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestEnergyPlot(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"energy.png", "energy.svg"} {
		path := filepath.Join(dir, name)
		if err := EnergyPlot(sampleSeries(), path, 6*vg.Inch, 4*vg.Inch); err != nil {
			t.Fatalf("EnergyPlot(%s): %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestTemperaturePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temperature.png")
	if err := TemperaturePlot(sampleSeries(), path, 4*vg.Inch, 3*vg.Inch); err != nil {
		t.Fatalf("TemperaturePlot: %v", err)
	}
}

func TestSpectrumPlot(t *testing.T) {
	spec := analysis.Spectrum{
		Wavenumber: []float64{0, 1000, 2000, 3000, 4000},
		Power:      []float64{0.1, 0.5, 1, 0.2, 0.05},
	}
	path := filepath.Join(t.TempDir(), "spectrum.svg")
	if err := SpectrumPlot(spec, path, 3500, 4*vg.Inch, 3*vg.Inch); err != nil {
		t.Fatalf("SpectrumPlot: %v", err)
	}
}

func TestPlotErrors(t *testing.T) {
	dir := t.TempDir()
	if err := EnergyPlot(sampleSeries(), filepath.Join(dir, "energy.bmp"), vg.Inch, vg.Inch); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := EnergyPlot(analysis.Series{}, filepath.Join(dir, "energy.png"), vg.Inch, vg.Inch); err == nil {
		t.Error("expected error for empty series")
	}
}
