package sim

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/milosgajdos/go-tilt/particle"
	"gonum.org/v1/gonum/mat"
)

// SnapshotPrefix prefixes particle snapshot file names
const SnapshotPrefix = "particle_set_"

// SnapshotWriter writes every particle set it receives into its own text file
// named particle_set_<step>. Each line holds one particle with space separated values.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter creates new SnapshotWriter writing into dir.
// dir is created if it does not exist.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("Failed to create snapshot directory: %w", err)
	}

	return &SnapshotWriter{dir: dir}, nil
}

// Path returns path of the snapshot of the given step.
func (w *SnapshotWriter) Path(step int) string {
	return filepath.Join(w.dir, SnapshotPrefix+strconv.Itoa(step))
}

// Write writes particles of s into the snapshot file of the given step.
func (w *SnapshotWriter) Write(step int, s *particle.Set) (err error) {
	f, err := os.Create(w.Path(step))
	if err != nil {
		return fmt.Errorf("Failed to create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	x := s.Particles()
	vals := make([]string, s.Dim())
	for i := 0; i < s.Len(); i++ {
		for j := range vals {
			vals[j] = strconv.FormatFloat(x.At(j, i), 'e', 18, 64)
		}
		if _, err := bw.WriteString(strings.Join(vals, " ") + "\n"); err != nil {
			return fmt.Errorf("Failed to write snapshot: %w", err)
		}
	}

	return bw.Flush()
}

// ReadSnapshot reads particle set from a snapshot file.
// All particles in the returned set have equal weight.
// It returns error if the file can't be read, is empty or has rows of different lengths.
func ReadSnapshot(path string) (*particle.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to open snapshot: %w", err)
	}
	defer f.Close()

	var (
		data []float64
		dim  int
		n    int
	)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if dim == 0 {
			dim = len(fields)
		}
		if len(fields) != dim {
			return nil, fmt.Errorf("Particle %d: expected %d values, got %d", n, dim, len(fields))
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("Particle %d: %w", n, err)
			}
			data = append(data, v)
		}
		n++
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("Failed to read snapshot: %w", err)
	}

	if n == 0 {
		return nil, fmt.Errorf("Empty snapshot: %s", path)
	}

	// rows hold particles; the set stores them as columns
	x := mat.NewDense(n, dim, data)

	return particle.NewSet(x.T(), nil)
}
