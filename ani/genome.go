// Package ani computes pairwise average nucleotide identity (ANI) statistics
// between genomes.  It fragments genome FASTA files into fixed-length query
// chunks, keeps the per-fragment length bookkeeping needed for
// normalization, and reduces tabular BLAST output into genome-by-genome
// result matrices.  Command generation and job planning live in the blast
// and jobgraph packages; executing the planned commands is the caller's
// concern.
package ani

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"github.com/genomealign/anib/blast"
	"github.com/genomealign/anib/encoding/fasta"
	"github.com/grailbio/base/errors"
)

// Genome is one input genome: a FASTA file plus its identifier (the file
// stem) and total sequence length.  Immutable once loaded.
type Genome struct {
	Name   string
	Path   string
	Length uint64
}

// Source yields the ordered set of genomes for a comparison batch.  The
// planning and reduction code never walks the filesystem itself; it takes
// whatever a Source produced.
type Source interface {
	Genomes() ([]Genome, error)
}

// fastaExts are the file extensions DirSource recognizes, before an
// optional ".gz".
var fastaExts = map[string]bool{
	".fna":   true,
	".fa":    true,
	".fasta": true,
}

// DirSource discovers genomes by listing a directory for FASTA files
// (.fna/.fa/.fasta, optionally gzipped), ordered by name.
type DirSource struct {
	Dir string
}

// Genomes implements Source.  Sequence lengths are computed by reading each
// file.
func (s DirSource) Genomes() ([]Genome, error) {
	infos, err := ioutil.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.E(err, "listing genome directory "+s.Dir)
	}
	var genomes []Genome
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := strings.TrimSuffix(info.Name(), ".gz")
		if !fastaExts[filepath.Ext(name)] {
			continue
		}
		path := filepath.Join(s.Dir, info.Name())
		seqs, err := fasta.ReadPath(path)
		if err != nil {
			return nil, errors.E(err, "loading genome "+path)
		}
		genomes = append(genomes, Genome{
			Name:   blast.Stem(path),
			Path:   path,
			Length: fasta.TotalLen(seqs),
		})
	}
	sort.Slice(genomes, func(i, j int) bool { return genomes[i].Name < genomes[j].Name })
	return genomes, nil
}

// GenomeLengths returns the name → total length map used to normalize
// coverage.
func GenomeLengths(genomes []Genome) map[string]uint64 {
	lengths := make(map[string]uint64, len(genomes))
	for _, g := range genomes {
		lengths[g.Name] = g.Length
	}
	return lengths
}
