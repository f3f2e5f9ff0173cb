package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/flowsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
)

type Store struct {
	baseDir string
	index   *Index
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// AttachIndex makes Save record runs in idx and List read from it.
func (s *Store) AttachIndex(idx *Index) {
	s.index = idx
}

// Dir returns the directory holding a run's files.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type ParticleRecord struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Px  float64 `json:"px"`
	Py  float64 `json:"py"`
	Sxx float64 `json:"s_xx_yy"`
	Sxy float64 `json:"s_xy"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Solver    string             `json:"solver"`
	Timestamp time.Time          `json:"timestamp"`
	Radius    float64            `json:"radius"`
	Viscosity float64            `json:"viscosity"`
	Lx        float64            `json:"lx"`
	Ly        float64            `json:"ly"`
	Nx        int                `json:"nx"`
	Ny        int                `json:"ny"`
	Particles []ParticleRecord   `json:"particles"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the stacked velocity buffer v under a new run id,
// which is stored in meta.ID and returned.
func (s *Store) Save(meta *RunMetadata, v []float64) (string, error) {
	if err := dynamo.CheckLen("velocity", v, dynamo.Dim*meta.Nx*meta.Ny); err != nil {
		return "", err
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Solver, now.UnixMilli())
	for i := 1; ; i++ {
		if _, err := os.Stat(s.Dir(runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Solver, now.UnixMilli(), i)
	}
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	if err := s.writeRun(runDir, meta, v); err != nil {
		_ = os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// writeRun fills runDir and records the run in the index. A partially
// written run directory is left for the caller to remove.
func (s *Store) writeRun(runDir string, meta *RunMetadata, v []float64) error {
	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(runDir, fieldFile), func(w io.Writer) error {
		return WriteFieldCSV(w, meta.Nx, meta.Ny, v)
	})
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Put(meta); err != nil {
			return fmt.Errorf("index run %s: %w", meta.ID, err)
		}
	}
	return nil
}

// writeFile creates path and hands it to write. The close error is
// reported when write succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// WriteFieldCSV writes one row per grid point: x, y, vx, vy.
func WriteFieldCSV(out io.Writer, nx, ny int, v []float64) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"x", "y", "vx", "vy"}); err != nil {
		return err
	}

	n := nx * ny
	for k := 0; k < n; k++ {
		row := []string{
			strconv.Itoa(k % nx),
			strconv.Itoa(k / nx),
			strconv.FormatFloat(v[k], 'g', -1, 64),
			strconv.FormatFloat(v[n+k], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	if s.index != nil {
		return s.index.List(RunFilter{})
	}
	return s.scan()
}

// scan reads the metadata of every run directory.
func (s *Store) scan() ([]RunMetadata, error) {
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
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadField reads a run's velocity buffer back in stacked layout.
func (s *Store) LoadField(runID string) (*RunMetadata, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.Dir(runID), fieldFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	n := meta.Nx * meta.Ny
	if len(records) != n+1 {
		return nil, nil, fmt.Errorf("run %s: %d field rows for a %dx%d grid: %w", runID, len(records)-1, meta.Nx, meta.Ny, dynamo.ErrDimensionMismatch)
	}

	v := make([]float64, dynamo.Dim*n)
	seen := make([]bool, n)
	for _, rec := range records[1:] {
		x, errX := strconv.Atoi(rec[0])
		y, errY := strconv.Atoi(rec[1])
		vx, errU := strconv.ParseFloat(rec[2], 64)
		vy, errV := strconv.ParseFloat(rec[3], 64)
		if errX != nil || errY != nil || errU != nil || errV != nil {
			return nil, nil, fmt.Errorf("run %s: malformed row %v", runID, rec)
		}
		if x < 0 || x >= meta.Nx || y < 0 || y >= meta.Ny {
			return nil, nil, &dynamo.FieldError{X: x, Y: y, Wrapped: dynamo.ErrDimensionMismatch}
		}
		k := y*meta.Nx + x
		if seen[k] {
			return nil, nil, fmt.Errorf("run %s: duplicate row: %w", runID, &dynamo.FieldError{X: x, Y: y, Wrapped: dynamo.ErrDimensionMismatch})
		}
		seen[k] = true
		v[k] = vx
		v[n+k] = vy
	}

	return meta, v, nil
}
