package ani

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// naCell is how a missing value (no alignment hits for a pair) is rendered
// in TSV output.  Missing is distinct from zero: "no similarity detected"
// and "perfect dissimilarity" are different signals.
const naCell = "NA"

// Matrix is a square table of one statistic, indexed by genome name on both
// axes.  Cells with no data hold NaN.  Values for (A,B) and (B,A) come from
// distinct alignment directions and are stored independently; the matrix is
// never symmetrized.
type Matrix struct {
	names []string
	index map[string]int
	cells [][]float64
}

// NewMatrix returns a matrix over the given genome names with every cell
// set to NaN.
func NewMatrix(names []string) *Matrix {
	m := &Matrix{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cells: make([][]float64, len(names)),
	}
	for i, name := range names {
		m.index[name] = i
		m.cells[i] = make([]float64, len(names))
		for j := range m.cells[i] {
			m.cells[i][j] = math.NaN()
		}
	}
	return m
}

// Names returns the genome names, in axis order.
func (m *Matrix) Names() []string { return m.names }

// Set stores the value for the (query, subject) cell.  Unknown names are a
// programming error.
func (m *Matrix) Set(query, subject string, v float64) {
	m.cells[m.row(query)][m.row(subject)] = v
}

// Get returns the value for the (query, subject) cell; NaN means no data.
func (m *Matrix) Get(query, subject string) float64 {
	return m.cells[m.row(query)][m.row(subject)]
}

func (m *Matrix) row(name string) int {
	i, ok := m.index[name]
	if !ok {
		log.Panicf("ani: unknown genome %q in matrix over %v", name, m.names)
	}
	return i
}

// WriteTSV writes the matrix as a tab-separated table with genome names on
// both axes.  NaN cells are written as "NA".
func (m *Matrix) WriteTSV(w io.Writer) error {
	out := tsv.NewWriter(w)
	out.WriteString("")
	for _, name := range m.names {
		out.WriteString(name)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for i, name := range m.names {
		out.WriteString(name)
		for j := range m.names {
			out.WriteString(formatCell(m.cells[i][j]))
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return naCell
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Matrices is the full result set for a comparison batch, one square table
// per statistic.
type Matrices struct {
	// Identity holds fractional percentage identity (0..1).
	Identity *Matrix
	// Coverage holds the fraction of the query genome covered by aligned
	// bases (0..1).
	Coverage *Matrix
	// AlignedLength holds total aligned bases per pair.
	AlignedLength *Matrix
	// SimErrors holds the similarity-error (mismatch) count per pair.
	SimErrors *Matrix
	// Hadamard holds Identity × Coverage.
	Hadamard *Matrix
}

// NewMatrices returns matrices over the given genomes with self-comparison
// diagonals filled in: full identity, full coverage, aligned length equal
// to the genome length, zero errors.  All off-diagonal cells start as the
// no-data sentinel.
func NewMatrices(genomes []Genome) *Matrices {
	names := make([]string, len(genomes))
	for i, g := range genomes {
		names[i] = g.Name
	}
	m := &Matrices{
		Identity:      NewMatrix(names),
		Coverage:      NewMatrix(names),
		AlignedLength: NewMatrix(names),
		SimErrors:     NewMatrix(names),
		Hadamard:      NewMatrix(names),
	}
	for _, g := range genomes {
		m.Identity.Set(g.Name, g.Name, 1)
		m.Coverage.Set(g.Name, g.Name, 1)
		m.AlignedLength.Set(g.Name, g.Name, float64(g.Length))
		m.SimErrors.Set(g.Name, g.Name, 0)
		m.Hadamard.Set(g.Name, g.Name, 1)
	}
	return m
}

// WriteDir writes one TSV file per statistic under dir, named
// <prefix>_percentage_identity.tsv and so on.  prefix is conventionally the
// mode label (e.g. "ANIb").
func (m *Matrices) WriteDir(ctx context.Context, dir, prefix string) error {
	tables := []struct {
		name   string
		matrix *Matrix
	}{
		{"percentage_identity", m.Identity},
		{"alignment_coverage", m.Coverage},
		{"alignment_lengths", m.AlignedLength},
		{"similarity_errors", m.SimErrors},
		{"hadamard", m.Hadamard},
	}
	for _, table := range tables {
		path := filepath.Join(dir, prefix+"_"+table.name+".tsv")
		if err := writeTSVFile(ctx, path, table.matrix); err != nil {
			return err
		}
	}
	return nil
}

func writeTSVFile(ctx context.Context, path string, m *Matrix) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "creating "+path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	return m.WriteTSV(out.Writer(ctx))
}
