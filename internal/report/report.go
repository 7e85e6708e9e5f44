// Package report writes the plain-text time series of a run: the XYZ
// trajectory, the energy table and per-atom velocity and kinetic energy
// tables.
package report

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/aimd/internal/atom"
)

const (
	TrajectoryFile = "trajectory.xyz"
	EnergyFile     = "energy.txt"
	VelocityFile   = "velocity.txt"
	KineticFile    = "kinetic.txt"
)

// Files appends reports to the four files under Dir.
type Files struct {
	Dir string
}

func NewFiles(dir string) *Files {
	return &Files{Dir: dir}
}

func (f *Files) path(name string) string { return filepath.Join(f.Dir, name) }

// Init truncates every report file and writes the column headers.
func (f *Files) Init() error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	headers := map[string]string{
		TrajectoryFile: "",
		EnergyFile: fmt.Sprintf("%-30s %-30s %-30s %s\n",
			"Time fs", "Potential 100 KJ/mol", "Kinetic 100 KJ/mol", "Total 100 KJ/mol"),
		VelocityFile: fmt.Sprintf("%-30s %-30s %-30s %-30s %-30s %s\n",
			"Number", "Symbol", "X", "Y", "Z", "Magnitude"),
		KineticFile: fmt.Sprintf("%-30s %-30s %s\n",
			"Number", "Symbol", "Kinetic 100 kJ/mol"),
	}
	for name, header := range headers {
		if err := os.WriteFile(f.path(name), []byte(header), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *Files) appendTo(name string, data []byte) error {
	file, err := os.OpenFile(f.path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Trajectory appends one XYZ frame.
func (f *Files) Trajectory(atoms []atom.Atom) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\ntrajectory\n", len(atoms))
	for _, a := range atoms {
		fmt.Fprintf(&buf, "%s %.5f %.5f %.5f\n", a.Symbol, a.Position.X, a.Position.Y, a.Position.Z)
	}
	return f.appendTo(TrajectoryFile, buf.Bytes())
}

// Energy appends one row of time (fs) and potential, kinetic and total
// energy (100 kJ/mol).
func (f *Files) Energy(time, potential, kinetic, total float64) error {
	row := fmt.Sprintf("%-30.2f %-30.6f %-30.6f %.6f\n", time, potential, kinetic, total)
	return f.appendTo(EnergyFile, []byte(row))
}

func (f *Files) Velocities(atoms []atom.Atom) error {
	var buf bytes.Buffer
	for i, a := range atoms {
		v := a.Velocity
		fmt.Fprintf(&buf, "%-30d %-30s %-30.8f %-30.8f %-30.8f %.8f\n",
			i+1, a.Symbol, v.X, v.Y, v.Z, v.Norm())
	}
	return f.appendTo(VelocityFile, buf.Bytes())
}

func (f *Files) Kinetic(atoms []atom.Atom) error {
	var buf bytes.Buffer
	for i, a := range atoms {
		fmt.Fprintf(&buf, "%-30d %-30s %.8f\n", i+1, a.Symbol, a.KineticEnergy())
	}
	return f.appendTo(KineticFile, buf.Bytes())
}

// Rewind drops trajectory frames and energy rows beyond the first frames
// records, as left by a step whose checkpoint was never written. It reports
// whether any file was shortened. Missing files are left alone.
func (f *Files) Rewind(frames, natoms int) (bool, error) {
	if frames < 0 || natoms < 1 {
		return false, fmt.Errorf("report: cannot rewind to %d frames of %d atoms", frames, natoms)
	}
	trimmed, err := keepLines(f.path(TrajectoryFile), frames*(natoms+2))
	if err != nil {
		return false, err
	}
	energy, err := keepLines(f.path(EnergyFile), 1+frames)
	if err != nil {
		return false, err
	}
	return trimmed || energy, nil
}

// keepLines truncates path after its first n lines.
func keepLines(path string, n int) (bool, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var offset int64
	for i := 0; i < n; i++ {
		line, err := r.ReadBytes('\n')
		offset += int64(len(line))
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
	if _, err := r.Peek(1); err == io.EOF {
		return false, nil
	}
	if err := file.Truncate(offset); err != nil {
		return false, err
	}
	return true, file.Sync()
}
