package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/aimd/internal/backend"
	"github.com/san-kum/aimd/internal/constraint"
	"github.com/san-kum/aimd/internal/units"
)

const (
	DefaultTimeStep   = 1.0
	DefaultNumSteps   = 10000
	DefaultOutputDir  = "."
	DefaultCheckpoint = "save.json"
	DefaultCommand    = "g16"
	DefaultRoute      = "#p B3LYP/6-31G(d) force"
)

// ErrInvalidConfig indicates run parameters that cannot start a simulation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Input       string         `yaml:"input"`
	TimeStep    float64        `yaml:"time_step"`
	NumSteps    int            `yaml:"num_steps"`
	Freeze      string         `yaml:"freeze"`
	Temperature float64        `yaml:"temperature" env:"AIMD_TEMPERATURE"`
	Seed        uint64         `yaml:"seed" env:"AIMD_SEED"`
	OutputDir   string         `yaml:"output_dir" env:"AIMD_OUTPUT_DIR"`
	Checkpoint  string         `yaml:"checkpoint"`
	Gaussian    GaussianConfig `yaml:"gaussian"`
}

type GaussianConfig struct {
	Command      string `yaml:"command" env:"AIMD_GAUSSIAN_COMMAND"`
	Route        string `yaml:"route" env:"AIMD_ROUTE"`
	Title        string `yaml:"title"`
	Charge       int    `yaml:"charge"`
	Multiplicity int    `yaml:"multiplicity"`
	NProc        int    `yaml:"nproc" env:"AIMD_NPROC"`
	Memory       string `yaml:"memory" env:"AIMD_MEMORY"`
	Chk          string `yaml:"chk"`
	WorkDir      string `yaml:"work_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeStep:    DefaultTimeStep,
		NumSteps:    DefaultNumSteps,
		Temperature: units.DefaultTemperature,
		OutputDir:   DefaultOutputDir,
		Checkpoint:  DefaultCheckpoint,
		Gaussian: GaussianConfig{
			Command:      DefaultCommand,
			Route:        DefaultRoute,
			Title:        "aimd step",
			Multiplicity: 1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from AIMD_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("time_step must be positive, got %g", c.TimeStep))
	}
	if c.NumSteps < 0 {
		errs = append(errs, fmt.Errorf("num_steps must not be negative, got %d", c.NumSteps))
	}
	if c.Temperature <= 0 {
		errs = append(errs, fmt.Errorf("temperature must be positive, got %g", c.Temperature))
	}
	if strings.TrimSpace(c.Checkpoint) == "" {
		errs = append(errs, errors.New("checkpoint file name is required"))
	}
	if _, err := constraint.Parse(c.Freeze); err != nil {
		errs = append(errs, err)
	}

	g := c.Gaussian
	if strings.TrimSpace(g.Command) == "" {
		errs = append(errs, errors.New("gaussian.command is required"))
	}
	if !strings.HasPrefix(strings.TrimSpace(g.Route), "#") {
		errs = append(errs, fmt.Errorf("gaussian.route must start with '#', got %q", g.Route))
	} else if !strings.Contains(strings.ToLower(g.Route), "force") {
		errs = append(errs, fmt.Errorf("gaussian.route must request forces, got %q", g.Route))
	}
	if g.Multiplicity < 1 {
		errs = append(errs, fmt.Errorf("gaussian.multiplicity must be at least 1, got %d", g.Multiplicity))
	}
	if g.NProc < 0 {
		errs = append(errs, fmt.Errorf("gaussian.nproc must not be negative, got %d", g.NProc))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) CheckpointPath() string {
	return filepath.Join(c.OutputDir, c.Checkpoint)
}

// Backend builds the Gaussian driver. Job files go to gaussian.work_dir,
// or the output directory when unset.
func (c *Config) Backend(logger *slog.Logger) *backend.Gaussian {
	g := backend.NewGaussian()
	g.Command = c.Gaussian.Command
	g.Route = c.Gaussian.Route
	g.Title = c.Gaussian.Title
	g.Charge = c.Gaussian.Charge
	g.Multiplicity = c.Gaussian.Multiplicity
	g.NProc = c.Gaussian.NProc
	g.Memory = c.Gaussian.Memory
	g.Checkpoint = c.Gaussian.Chk
	g.Dir = c.OutputDir
	if c.Gaussian.WorkDir != "" {
		g.Dir = c.Gaussian.WorkDir
	}
	g.Logger = logger
	return g
}
