package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const MetadataFile = "metadata.json"

// Store keeps the description of a run next to its output files.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Input       string             `json:"input"`
	Timestamp   time.Time          `json:"timestamp"`
	Updated     time.Time          `json:"updated"`
	Seed        uint64             `json:"seed"`
	TimeStep    float64            `json:"time_step"`
	NumSteps    int                `json:"num_steps"`
	Temperature float64            `json:"temperature"`
	Route       string             `json:"route"`
	Atoms       int                `json:"atoms"`
	Frozen      []int              `json:"frozen,omitempty"`
	Restarts    int                `json:"restarts"`
	LastStep    int                `json:"last_step"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// NewRunID derives an identifier from the input name and the start time.
func NewRunID(input string, at time.Time) string {
	base := filepath.Base(input)
	base = base[:len(base)-len(filepath.Ext(base))]
	if base == "" || base == "." {
		base = "run"
	}
	return fmt.Sprintf("%s_%d", base, at.Unix())
}

func (s *Store) Save(meta *RunMetadata) error {
	if err := s.Init(); err != nil {
		return err
	}
	meta.Updated = time.Now()

	file, err := os.Create(filepath.Join(s.baseDir, MetadataFile))
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) Load() (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of every run directory directly under the
// store's directory. Directories without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := New(filepath.Join(s.baseDir, entry.Name())).Load()
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}
