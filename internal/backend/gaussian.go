package backend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/vector"
)

// Gaussian drives a Gaussian single-point force calculation through an
// input file on stdin and an output file on stdout.
type Gaussian struct {
	Command      string
	Args         []string
	Env          []string
	Route        string
	Title        string
	Charge       int
	Multiplicity int
	NProc        int
	Memory       string
	Checkpoint   string
	Dir          string
	InputFile    string
	OutputFile   string
	Logger       *slog.Logger
}

func NewGaussian() *Gaussian {
	return &Gaussian{
		Command:      "g16",
		Route:        "#p B3LYP/6-31G(d) force",
		Title:        "aimd step",
		Multiplicity: 1,
		Dir:          ".",
		InputFile:    "input.com",
		OutputFile:   "forces.out",
	}
}

func (g *Gaussian) inputPath() string  { return filepath.Join(g.Dir, g.InputFile) }
func (g *Gaussian) outputPath() string { return filepath.Join(g.Dir, g.OutputFile) }

func (g *Gaussian) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Evaluate writes the input, runs the program and parses its output.
func (g *Gaussian) Evaluate(ctx context.Context, sites []atom.Site) (*Result, error) {
	if err := g.BuildInput(sites); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := g.Run(ctx); err != nil {
		return nil, err
	}

	res, err := g.ParseOutputFile(len(sites))
	if err != nil {
		return nil, err
	}
	g.logger().Debug("gaussian finished",
		"atoms", len(sites),
		"energy_hartree", res.Energy,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// BuildInput writes the job file for sites.
func (g *Gaussian) BuildInput(sites []atom.Site) error {
	if len(sites) == 0 {
		return fmt.Errorf("%w: empty geometry", ErrEvaluatorFailure)
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}

	f, err := os.Create(g.inputPath())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	g.writeInput(w, sites)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}
	return nil
}

func (g *Gaussian) writeInput(w io.Writer, sites []atom.Site) {
	if g.NProc > 0 {
		fmt.Fprintf(w, "%%nprocshared=%d\n", g.NProc)
	}
	if g.Memory != "" {
		fmt.Fprintf(w, "%%mem=%s\n", g.Memory)
	}
	if g.Checkpoint != "" {
		fmt.Fprintf(w, "%%chk=%s\n", g.Checkpoint)
	}
	fmt.Fprintf(w, "%s\n\n", g.Route)
	title := g.Title
	if title == "" {
		title = "aimd"
	}
	fmt.Fprintf(w, "%s\n\n", title)
	fmt.Fprintf(w, "%d %d\n", g.Charge, g.Multiplicity)
	for _, s := range sites {
		fmt.Fprintf(w, "%s %.5f %.5f %.5f\n", s.Symbol, s.Position.X, s.Position.Y, s.Position.Z)
	}
	fmt.Fprintln(w)
}

// Run executes the program with the input file on stdin, truncating the
// output file first. A non-zero exit status is an evaluator failure.
func (g *Gaussian) Run(ctx context.Context) error {
	in, err := os.Open(g.inputPath())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}
	defer in.Close()

	out, err := os.Create(g.outputPath())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.Command, g.Args...)
	cmd.Dir = g.Dir
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = &stderr
	if len(g.Env) > 0 {
		cmd.Env = append(os.Environ(), g.Env...)
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrEvaluatorFailure, g.Command, err, msg)
		}
		return fmt.Errorf("%w: %s: %w", ErrEvaluatorFailure, g.Command, err)
	}
	return nil
}

func (g *Gaussian) ParseOutputFile(n int) (*Result, error) {
	f, err := os.Open(g.outputPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}
	defer f.Close()
	return ParseOutput(f, n)
}

// ParseOutput reads the last SCF energy and the last force table from a
// Gaussian log. The table must list exactly n atoms.
func ParseOutput(r io.Reader, n int) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		energy    float64
		hasEnergy bool
		forces    []vector.Force
		current   []vector.Force
		inTable   bool
	)

	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, "Error termination"):
			return nil, fmt.Errorf("%w: %s", ErrEvaluatorFailure, strings.TrimSpace(line))

		case strings.HasPrefix(line, " SCF Done"):
			e, ok := scfEnergy(line)
			if !ok {
				return nil, fmt.Errorf("%w: unreadable energy line %q", ErrEvaluatorFailure, line)
			}
			energy, hasEnergy = e, true

		case strings.Contains(line, "Forces (Hartrees/Bohr)"):
			inTable = true
			current = current[:0:0]

		case inTable:
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "Number") {
				continue
			}
			if strings.HasPrefix(trimmed, "---") {
				if len(current) > 0 {
					forces = current
					inTable = false
				}
				continue
			}
			f, err := forceRecord(trimmed)
			if err != nil {
				return nil, err
			}
			current = append(current, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluatorFailure, err)
	}

	if !hasEnergy {
		return nil, fmt.Errorf("%w: no SCF energy in output", ErrEvaluatorFailure)
	}
	if forces == nil {
		return nil, fmt.Errorf("%w: no force table in output", ErrEvaluatorFailure)
	}
	if len(forces) != n {
		return nil, fmt.Errorf("%w: %d forces for %d atoms", ErrEvaluatorFailure, len(forces), n)
	}
	return &Result{Energy: energy, Forces: forces}, nil
}

// scfEnergy returns the first number after '=' on an "SCF Done" line.
func scfEnergy(line string) (float64, bool) {
	_, rest, found := strings.Cut(line, "=")
	if !found {
		return 0, false
	}
	for _, field := range strings.Fields(rest) {
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// forceRecord parses "center atomic_number fx fy fz".
func forceRecord(line string) (vector.Force, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return vector.Force{}, fmt.Errorf("%w: malformed force record %q", ErrEvaluatorFailure, line)
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return vector.Force{}, fmt.Errorf("%w: malformed force component %q", ErrEvaluatorFailure, fields[2+i])
		}
		xyz[i] = v
	}
	return vector.NewForce(xyz[0], xyz[1], xyz[2]), nil
}
