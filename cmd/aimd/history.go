package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/aimd/internal/analysis"
	"github.com/san-kum/aimd/internal/checkpoint"
	"github.com/san-kum/aimd/internal/config"
	"github.com/san-kum/aimd/internal/engine"
	"github.com/san-kum/aimd/internal/export"
	"github.com/san-kum/aimd/internal/storage"
	"github.com/san-kum/aimd/internal/tui"
)

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

func loadHistory(cmd *cobra.Command) (*config.Config, []engine.State, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	states, err := checkpoint.NewLog[engine.State](cfg.CheckpointPath()).All()
	if err != nil {
		return nil, nil, err
	}
	return cfg, states, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, states, err := loadHistory(cmd)
	if err != nil {
		return err
	}
	s := analysis.NewSeries(states)
	if s.Len() < 2 {
		return analysis.ErrTooShort
	}

	fmt.Printf("checkpoint: %s\n", cfg.CheckpointPath())
	fmt.Printf("samples: %d (%.2f fs)\n\n", s.Len(), s.Time[s.Len()-1])

	series := []struct {
		caption string
		data    []float64
	}{
		{"potential energy (100 kJ/mol)", s.Potential},
		{"kinetic energy (100 kJ/mol)", s.Kinetic},
		{"total energy (100 kJ/mol)", s.Total},
		{"temperature (K)", s.Temperature},
	}
	for _, sr := range series {
		graph := asciigraph.Plot(sr.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	_, states, err := loadHistory(cmd)
	if err != nil {
		return err
	}
	summary, err := analysis.Summarize(states)
	if err != nil {
		return err
	}

	var spec analysis.Spectrum
	vacf, err := analysis.VelocityAutocorrelation(states, maxLag)
	if err == nil {
		spec, err = analysis.PowerSpectrum(vacf, states[0].TimeStep)
	}
	if err != nil && !errors.Is(err, analysis.ErrTooShort) {
		return err
	}

	if jsonOut {
		metrics := map[string]float64{"spectrum_peak_cm-1": spec.Peak()}
		if meta, merr := storage.New(outputDirOf(cmd)).Load(); merr == nil {
			for k, v := range meta.Metrics {
				metrics[k] = v
			}
		}
		return export.WriteJSON(os.Stdout, analysis.NewSeries(states), summary, metrics)
	}

	fmt.Println(tui.Title.Render("ENERGY"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tMEAN\tSTD\tMIN\tMAX")
	for _, row := range []struct {
		name string
		st   analysis.Stats
	}{
		{"potential", summary.Potential},
		{"kinetic", summary.Kinetic},
		{"total", summary.Total},
		{"temperature", summary.Temperature},
	} {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", row.name, row.st.Mean, row.st.StdDev, row.st.Min, row.st.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(tui.Row("steps", fmt.Sprintf("%d", summary.Steps)))
	fmt.Println(tui.Row("duration", fmt.Sprintf("%.2f fs", summary.Duration)))
	fmt.Println(tui.Row("drift", fmt.Sprintf("%.3e /fs", summary.DriftRate)))

	if len(spec.Power) > 0 {
		fmt.Println()
		fmt.Println(tui.Title.Render("SPECTRUM"))
		fmt.Println(tui.Row("peak", fmt.Sprintf("%.1f cm^-1", spec.Peak())))
		n := len(spec.Power) / 2
		if n > 1 {
			fmt.Println(asciigraph.Plot(spec.Power[:n],
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("velocity autocorrelation power"),
			))
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	_, states, err := loadHistory(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	s := analysis.NewSeries(states)

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if err := export.ExportCSV(path, s); err != nil {
			return err
		}
		fmt.Printf("exported %d samples to %s\n", s.Len(), path)
		return nil
	}

	width, height := 8*vg.Inch, 5*vg.Inch
	switch exportKind {
	case "energy":
		err = export.EnergyPlot(s, path, width, height)
	case "temperature":
		err = export.TemperaturePlot(s, path, width, height)
	case "spectrum":
		var vacf []float64
		vacf, err = analysis.VelocityAutocorrelation(states, maxLag)
		if err != nil {
			return err
		}
		var spec analysis.Spectrum
		spec, err = analysis.PowerSpectrum(vacf, states[0].TimeStep)
		if err != nil {
			return err
		}
		err = export.SpectrumPlot(spec, path, maxWave, width, height)
	default:
		return fmt.Errorf("unknown export kind %q", exportKind)
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved %s plot to %s\n", exportKind, path)
	return nil
}

func archiveRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := checkpoint.NewLog[engine.State](cfg.CheckpointPath())

	if restoreArc != "" {
		if err := log.Restore(restoreArc); err != nil {
			return err
		}
		fmt.Printf("restored %s from %s\n", log.Path(), restoreArc)
		return nil
	}

	dst := log.Path() + ".zst"
	if len(args) == 1 {
		dst = args[0]
	}
	size, err := log.Archive(dst)
	if err != nil {
		return err
	}
	fmt.Printf("archived %s to %s (%d bytes)\n", log.Path(), dst, size)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(outputDirOf(cmd)).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tATOMS\tSTEP\tDT\tRESTARTS\tROUTE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%.2f\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Atoms,
			run.LastStep,
			run.NumSteps,
			run.TimeStep,
			run.Restarts,
			run.Route,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets(family)
	if len(names) == 0 {
		return fmt.Errorf("no presets in family %q", family)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFAMILY\tDT\tROUTE\tNOTE")
	for _, name := range names {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\t%s\n", name, p.Family, p.TimeStep, p.Route, p.Note)
	}
	return w.Flush()
}

func outputDirOf(cmd *cobra.Command) string {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return outputDir
	}
	return cfg.OutputDir
}

func printSummary(meta *storage.RunMetadata, final engine.State, elapsed time.Duration) {
	var s strings.Builder
	s.WriteString(tui.Title.Render(strings.ToUpper(meta.ID)) + "\n")
	s.WriteString(tui.StatusDone.Render("DONE") + "\n\n")
	s.WriteString(tui.Row("steps", fmt.Sprintf("%d", meta.LastStep)) + "\n")
	s.WriteString(tui.Row("time", fmt.Sprintf("%.2f fs", final.Time()-final.TimeStep)) + "\n")
	s.WriteString(tui.Row("total energy", fmt.Sprintf("%.6f", final.TotalEnergy)) + "\n")
	s.WriteString(tui.Row("temperature", fmt.Sprintf("%.1f K", final.Temperature())) + "\n")
	for _, name := range []string{"energy_drift", "mean_temperature", "stability"} {
		if v, ok := meta.Metrics[name]; ok {
			s.WriteString(tui.Row(name, fmt.Sprintf("%.6g", v)) + "\n")
		}
	}
	s.WriteString(tui.Row("wall time", elapsed.Round(time.Second).String()))
	fmt.Println(tui.Panel.Render(s.String()))
}
