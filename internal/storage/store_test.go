package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
)

func testResult() *diffusion.Result {
	f := grid.NewField(grid.Shape3D(4, 3, 5))
	for i := range f.Data() {
		f.Data()[i] = float64(i) / 7
	}
	return &diffusion.Result{
		Iterations: 20,
		Elapsed:    1500 * time.Millisecond,
		Metrics:    map[string]float64{"heat_drift": 1e-14},
		Diagnostics: []diffusion.Sample{
			{Iteration: 0, Heat: 10, Max: 2, Min: 0},
			{Iteration: 20, Heat: 9.75, Max: 1.25, Min: 0.125, Elapsed: 1500 * time.Millisecond},
		},
		Final: f,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "test", Dt: 0.01, Backend: "cpu", Dims: [3]int{2, 1, 1}}, testResult(), true)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Iterations != 20 || meta.Dims != [3]int{2, 1, 1} {
		t.Errorf("metadata lost fields: %+v", meta)
	}
	if meta.Metrics["heat_drift"] != 1e-14 {
		t.Errorf("expected heat_drift 1e-14, got %g", meta.Metrics["heat_drift"])
	}
	if meta.Elapsed != 1.5 || meta.FieldSlice != 2 {
		t.Errorf("elapsed=%v slice=%d", meta.Elapsed, meta.FieldSlice)
	}

	samples, err := st.LoadDiagnostics(runID)
	if err != nil {
		t.Fatalf("load diagnostics failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1].Heat != 9.75 || samples[1].Min != 0.125 || samples[1].Elapsed != 1500*time.Millisecond {
		t.Errorf("sample round trip: %+v", samples[1])
	}

	rows, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	final := testResult().Final
	if len(rows) != 3 || len(rows[0]) != 4 {
		t.Fatalf("field is %dx%d, want 3 rows of 4", len(rows), len(rows[0]))
	}
	if rows[2][3] != final.At(3, 2, 2) {
		t.Errorf("field value %v, want %v", rows[2][3], final.At(3, 2, 2))
	}
}

func TestStoreWithoutField(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Name: "nofield"}, testResult(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadField(runID); !errors.Is(err, ErrNoField) {
		t.Errorf("expected ErrNoField, got %v", err)
	}
	meta, _ := st.Load(runID)
	if meta.FieldSlice != -1 {
		t.Errorf("field slice = %d, want -1", meta.FieldSlice)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, name := range []string{"first", "second"} {
		if _, err := st.Save(RunMetadata{Name: name}, testResult(), false); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "first" || runs[1].Name != "second" {
		t.Errorf("runs out of order: %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Name: "test"}, testResult(), true)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "diagnostics.csv", "field.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	res := testResult()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, RunMetadata{Name: "exported", Iterations: 20}, res.Diagnostics); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.Name != "exported" || len(data.Diagnostics) != 2 || data.Diagnostics[1].Elapsed != 1.5 {
		t.Errorf("unexpected export %+v", data)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data.Run, res.Diagnostics); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("export file not written")
	}
}
