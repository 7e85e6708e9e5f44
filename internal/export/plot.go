// Package export renders run histories to image files and tables.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/aimd/internal/analysis"
)

var imageFormats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".eps": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

func checkFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !imageFormats[ext] {
		return fmt.Errorf("export: unsupported image format %q", ext)
	}
	return nil
}

// relative returns x - x[0], so curves of very different magnitude share
// one axis.
func relative(times, x []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = times[i]
		pts[i].Y = x[i] - x[0]
	}
	return pts
}

// EnergyPlot draws the potential, kinetic and total energy relative to
// their first value. The format follows the file extension.
func EnergyPlot(s analysis.Series, path string, width, height vg.Length) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if s.Len() == 0 {
		return analysis.ErrTooShort
	}

	p := plot.New()
	p.Title.Text = "Energy relative to t = 0"
	p.X.Label.Text = "Time (fs)"
	p.Y.Label.Text = "ΔE (100 kJ/mol)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	err := plotutil.AddLines(p,
		"potential", relative(s.Time, s.Potential),
		"kinetic", relative(s.Time, s.Kinetic),
		"total", relative(s.Time, s.Total),
	)
	if err != nil {
		return err
	}
	return p.Save(width, height, path)
}

func TemperaturePlot(s analysis.Series, path string, width, height vg.Length) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if s.Len() == 0 {
		return analysis.ErrTooShort
	}

	p := plot.New()
	p.Title.Text = "Instantaneous temperature"
	p.X.Label.Text = "Time (fs)"
	p.Y.Label.Text = "T (K)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, s.Len())
	for i := range pts {
		pts[i].X = s.Time[i]
		pts[i].Y = s.Temperature[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(width, height, path)
}

// SpectrumPlot draws a power spectrum up to maxWavenumber cm⁻¹.
func SpectrumPlot(spec analysis.Spectrum, path string, maxWavenumber float64, width, height vg.Length) error {
	if err := checkFormat(path); err != nil {
		return err
	}

	pts := make(plotter.XYs, 0, len(spec.Power))
	for i, w := range spec.Wavenumber {
		if maxWavenumber > 0 && w > maxWavenumber {
			break
		}
		pts = append(pts, plotter.XY{X: w, Y: spec.Power[i]})
	}
	if len(pts) == 0 {
		return analysis.ErrTooShort
	}

	p := plot.New()
	p.Title.Text = "Vibrational power spectrum"
	p.X.Label.Text = "Wavenumber (cm⁻¹)"
	p.Y.Label.Text = "Power (normalised)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(width, height, path)
}
