package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/aimd/internal/config"
)

var (
	configFile string
	outputDir  string
	verbose    bool

	timeStep    float64
	numSteps    int
	restart     bool
	freeze      string
	preset      string
	seed        uint64
	temperature float64
	useTUI      bool

	maxLag     int
	jsonOut    bool
	exportKind string
	maxWave    float64
	restoreArc string
	family     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "aimd",
		Short:         "ab-initio molecular dynamics driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "dir", config.DefaultOutputDir, "output directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run a trajectory from a Gaussian output file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64VarP(&timeStep, "time-step", "t", config.DefaultTimeStep, "time step (fs)")
	runCmd.Flags().IntVarP(&numSteps, "num-steps", "n", config.DefaultNumSteps, "number of steps")
	runCmd.Flags().BoolVarP(&restart, "restart", "r", false, "resume from the checkpoint log")
	runCmd.Flags().StringVarP(&freeze, "freeze", "f", "", "1-based atom ranges to freeze, e.g. 1-3,7")
	runCmd.Flags().StringVar(&preset, "preset", "", "level-of-theory preset")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "velocity seed (0 picks one)")
	runCmd.Flags().Float64Var(&temperature, "temperature", 0, "reference temperature (K)")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "live terminal view")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot energies from the checkpoint log",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "energy statistics and vibrational spectrum",
		Args:  cobra.NoArgs,
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&maxLag, "max-lag", 0, "autocorrelation length in steps (0 uses the whole run)")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "export the run as an image (png, svg, pdf) or csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportKind, "kind", "energy", "energy, temperature or spectrum")
	exportCmd.Flags().Float64Var(&maxWave, "max-wavenumber", 4000, "spectrum cutoff (cm^-1)")
	exportCmd.Flags().IntVar(&maxLag, "max-lag", 0, "autocorrelation length in steps")

	archiveCmd := &cobra.Command{
		Use:   "archive [file]",
		Short: "compress the checkpoint log with zstd",
		Args:  cobra.MaximumNArgs(1),
		RunE:  archiveRun,
	}
	archiveCmd.Flags().StringVar(&restoreArc, "restore", "", "restore the checkpoint log from an archive")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs below the output directory",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list level-of-theory presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&family, "family", "", "semiempirical, hf or dft")

	rootCmd.AddCommand(runCmd, plotCmd, analyzeCmd, exportCmd, archiveCmd, listCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers defaults, the config file, AIMD_* variables, the preset
// and finally explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") || cfg.OutputDir == "" {
		cfg.OutputDir = outputDir
	}
	if flags.Lookup("preset") != nil && preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if flags.Changed("time-step") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("num-steps") {
		cfg.NumSteps = numSteps
	}
	if flags.Changed("freeze") {
		cfg.Freeze = freeze
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	return cfg, nil
}
