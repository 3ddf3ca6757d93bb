// Package storage persists runs: a metadata file plus the tracked
// grain's history as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shearlab/dustbox/internal/config"
	"github.com/shearlab/dustbox/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Scheme    string             `json:"scheme"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Omega     float64            `json:"omega"`
	Shearing  bool               `json:"shearing_box"`
	Fargo     bool               `json:"fargo"`
	Feedback  bool               `json:"feedback"`
	Grains    int                `json:"grains"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one run directory and returns its id.
func (s *Store) Save(preset string, cfg *config.Config, grains int, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Scheme, time.Now().Unix())
	if preset != "" {
		runID = fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Scheme:    cfg.Scheme,
		Dt:        cfg.Dt,
		Steps:     result.StepsTaken,
		Omega:     cfg.Omega,
		Shearing:  cfg.ShearingBox,
		Fargo:     cfg.Fargo,
		Feedback:  cfg.Feedback,
		Grains:    grains,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "history.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"t", "x1", "x2", "x3", "v1", "v2", "v3"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			fmtF(result.Times[i]),
			fmtF(result.X1[i]), fmtF(result.X2[i]), fmtF(result.X3[i]),
			fmtF(result.V1[i]), fmtF(result.V2[i]), fmtF(result.V3[i]),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// List returns the metadata of every stored run, in run-directory name
// order.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if json.Unmarshal(data, &meta) == nil {
			runs = append(runs, meta)
		}
	}
	return runs, nil
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
