package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
)

var ErrNoField = errors.New("storage: run has no saved field")

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
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Shape      [3]int             `json:"shape"`
	Lengths    [3]float64         `json:"lengths"`
	Dt         float64            `json:"dt"`
	Iterations int                `json:"iterations"`
	Backend    string             `json:"backend"`
	Boundary   [3]string          `json:"boundary"`
	Dims       [3]int             `json:"dims"`
	Overlap    bool               `json:"overlap"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Metrics    map[string]float64 `json:"metrics"`
	// FieldSlice is the z index of the saved field, -1 when none was saved.
	FieldSlice int `json:"field_slice"`
}

// Save writes metadata.json and diagnostics.csv into a new run directory,
// plus field.csv when saveField is set. It fills in ID, Timestamp,
// Iterations, Elapsed, Metrics and FieldSlice from result.
func (s *Store) Save(meta RunMetadata, result *diffusion.Result, saveField bool) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Iterations = result.Iterations
	meta.Elapsed = result.Elapsed.Seconds()
	meta.Metrics = result.Metrics
	meta.FieldSlice = -1

	if saveField && result.Final != nil {
		meta.FieldSlice = result.Final.Shape().Nz / 2
		if err := writeField(filepath.Join(runDir, "field.csv"), result.Final, meta.FieldSlice); err != nil {
			return "", err
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeDiagnostics(filepath.Join(runDir, "diagnostics.csv"), result.Diagnostics); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDiagnostics(path string, samples []diffusion.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "heat", "max", "min", "elapsed"}); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Iteration),
			strconv.FormatFloat(smp.Heat, 'g', -1, 64),
			strconv.FormatFloat(smp.Max, 'g', -1, 64),
			strconv.FormatFloat(smp.Min, 'g', -1, 64),
			strconv.FormatFloat(smp.Elapsed.Seconds(), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeField stores z-slice k of f, one row per j.
func writeField(path string, f *grid.Field, k int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	s := f.Shape()
	row := make([]string, s.Nx)
	for j := 0; j < s.Ny; j++ {
		for i := 0; i < s.Nx; i++ {
			row[i] = strconv.FormatFloat(f.At(i, j, k), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadDiagnostics(runID string) ([]diffusion.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "diagnostics.csv"))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []diffusion.Sample{}, nil
	}

	samples := make([]diffusion.Sample, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) < 5 {
			return nil, fmt.Errorf("diagnostics line %d: expected 5 columns, got %d", line+2, len(rec))
		}
		it, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("diagnostics line %d: %w", line+2, err)
		}
		vals := make([]float64, 4)
		for c := range vals {
			if vals[c], err = strconv.ParseFloat(rec[c+1], 64); err != nil {
				return nil, fmt.Errorf("diagnostics line %d: %w", line+2, err)
			}
		}
		samples = append(samples, diffusion.Sample{
			Iteration: it,
			Heat:      vals[0],
			Max:       vals[1],
			Min:       vals[2],
			Elapsed:   time.Duration(vals[3] * float64(time.Second)),
		})
	}
	return samples, nil
}

// LoadField returns the saved slice indexed [j][i].
func (s *Store) LoadField(runID string) ([][]float64, error) {
	path := filepath.Join(s.baseDir, runID, "field.csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoField, runID)
	}
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, len(records))
	for j, rec := range records {
		rows[j] = make([]float64, len(rec))
		for i, v := range rec {
			if rows[j][i], err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("field row %d: %w", j, err)
			}
		}
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
