package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/backend"
	"github.com/san-kum/aimd/internal/checkpoint"
	"github.com/san-kum/aimd/internal/config"
	"github.com/san-kum/aimd/internal/constraint"
	"github.com/san-kum/aimd/internal/engine"
	"github.com/san-kum/aimd/internal/metrics"
	"github.com/san-kum/aimd/internal/report"
	"github.com/san-kum/aimd/internal/storage"
	"github.com/san-kum/aimd/internal/tui"
)

const (
	logFile            = "aimd.log"
	stabilityThreshold = 0.5 // Å per step
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}
	if !restart && cfg.Input == "" {
		return fmt.Errorf("%w: an input file is required unless --restart is given", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	logOut := os.Stderr
	if useTUI {
		f, err := os.OpenFile(filepath.Join(cfg.OutputDir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := checkpoint.NewLog[engine.State](cfg.CheckpointPath())
	reports := report.NewFiles(cfg.OutputDir)
	eval := cfg.Backend(logger)
	store := storage.New(cfg.OutputDir)

	var (
		eng  *engine.Engine
		meta *storage.RunMetadata
	)
	if restart {
		eng, meta, err = resumeRun(cmd, cfg, log, reports, eval, store, logger)
	} else {
		eng, meta, err = startRun(cfg, log, reports, eval, logger)
	}
	if err != nil {
		return err
	}

	eng.AddMetric(metrics.NewEnergyDrift())
	eng.AddMetric(metrics.NewTemperature())
	eng.AddMetric(metrics.NewStability(stabilityThreshold))

	if err := store.Save(meta); err != nil {
		logger.Warn("could not save run metadata", "error", err)
	}

	start := time.Now()
	if useTUI {
		err = runWithTUI(ctx, eng, meta.ID)
	} else {
		err = eng.Run(ctx)
	}

	final := eng.State()
	meta.LastStep = final.StepNum - 1
	meta.Metrics = eng.Metrics()
	if serr := store.Save(meta); serr != nil {
		logger.Warn("could not save run metadata", "error", serr)
	}

	if errors.Is(err, context.Canceled) {
		logger.Warn("run interrupted", "last_step", meta.LastStep)
		fmt.Println(warnStyle.Render("interrupted") + " resume with: aimd run --restart --dir " + cfg.OutputDir)
		return nil
	}
	if err != nil {
		return err
	}

	printSummary(meta, final, time.Since(start))
	return nil
}

func startRun(cfg *config.Config, log *checkpoint.Log[engine.State], reports *report.Files, eval backend.Evaluator, logger *slog.Logger) (*engine.Engine, *storage.RunMetadata, error) {
	if cfg.Seed == 0 {
		s, err := randomSeed()
		if err != nil {
			return nil, nil, err
		}
		cfg.Seed = s
	}

	atoms, err := atom.IngestFile(cfg.Input, atom.NewSampler(cfg.Temperature, cfg.Seed))
	if err != nil {
		return nil, nil, err
	}
	frozen, err := constraint.Apply(atoms, cfg.Freeze)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("structure loaded", "input", cfg.Input, "atoms", len(atoms), "frozen", len(frozen), "seed", cfg.Seed)

	if err := reports.Init(); err != nil {
		return nil, nil, err
	}
	if err := log.Reset(); err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(atoms, engine.Config{
		TimeStep:    cfg.TimeStep,
		NumSteps:    cfg.NumSteps,
		Temperature: cfg.Temperature,
	}, eval, log, reports, logger)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	meta := &storage.RunMetadata{
		ID:          storage.NewRunID(cfg.Input, now),
		Input:       cfg.Input,
		Timestamp:   now,
		Seed:        cfg.Seed,
		TimeStep:    cfg.TimeStep,
		NumSteps:    cfg.NumSteps,
		Temperature: cfg.Temperature,
		Route:       cfg.Gaussian.Route,
		Atoms:       len(atoms),
		Frozen:      frozen,
	}
	return eng, meta, nil
}

// resumeRun continues from the last complete checkpoint record. The stored
// budget is kept unless --num-steps was given.
func resumeRun(cmd *cobra.Command, cfg *config.Config, log *checkpoint.Log[engine.State], reports *report.Files, eval backend.Evaluator, store *storage.Store, logger *slog.Logger) (*engine.Engine, *storage.RunMetadata, error) {
	repaired, err := log.Repair()
	if err != nil {
		return nil, nil, err
	}
	if repaired {
		logger.Warn("dropped incomplete checkpoint record", "path", log.Path())
	}

	last, err := log.Last()
	if err != nil {
		return nil, nil, err
	}
	last = restartOverrides(cmd.Flags().Changed, cfg, last, logger)
	rewound, err := reports.Rewind(last.StepNum+1, len(last.Atoms))
	if err != nil {
		return nil, nil, err
	}
	if rewound {
		logger.Warn("dropped report rows past the last checkpoint", "step", last.StepNum)
	}
	logger.Info("resuming", "step", last.StepNum, "num_steps", last.NumSteps)

	eng, err := engine.Resume(last, eval, log, reports, logger)
	if err != nil {
		return nil, nil, err
	}

	meta, err := store.Load()
	if err != nil {
		now := time.Now()
		meta = &storage.RunMetadata{
			ID:        storage.NewRunID(cfg.Input, now),
			Input:     cfg.Input,
			Timestamp: now,
			TimeStep:  last.TimeStep,
			Route:     cfg.Gaussian.Route,
			Atoms:     len(last.Atoms),
		}
	}
	meta.Restarts++
	meta.NumSteps = last.NumSteps
	return eng, meta, nil
}

// restartOverrides applies the flags that still matter to a checkpointed
// state and warns about those that cannot change it.
func restartOverrides(changed func(string) bool, cfg *config.Config, last engine.State, logger *slog.Logger) engine.State {
	if changed("num-steps") {
		last.NumSteps = cfg.NumSteps
	}
	if changed("freeze") {
		logger.Warn("--freeze is ignored on restart; frozen atoms come from the checkpoint")
	}
	if changed("time-step") && cfg.TimeStep != last.TimeStep {
		logger.Warn("--time-step is ignored on restart; the time step comes from the checkpoint",
			"requested_fs", cfg.TimeStep, "checkpoint_fs", last.TimeStep)
	}
	return last
}

// runWithTUI steps the engine in the background while the live view runs.
// Quitting the view cancels the run.
func runWithTUI(ctx context.Context, eng *engine.Engine, title string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(title, cancel), tea.WithContext(ctx))
	eng.AddObserver(tui.NewObserver(p))

	done := make(chan error, 1)
	go func() {
		err := eng.Run(ctx)
		p.Send(tui.DoneMsg{Err: err})
		done <- err
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done
		return err
	}
	return <-done
}

func randomSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	s := binary.LittleEndian.Uint64(b[:])
	if s == 0 {
		s = 1
	}
	return s, nil
}
