package ani

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/genomealign/anib/encoding/fasta"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

const (
	// FragmentSuffix is appended to a genome's stem to name its fragmented
	// query file.  Downstream naming (alignment output paths, resumed runs)
	// depends on it exactly.
	FragmentSuffix = "-fragments"

	// DefaultFragmentSize is the standard ANIb query fragment length.
	DefaultFragmentSize = 1020
)

// FragLengths maps genome name → fragment ID → fragment length.  It is
// produced during fragmentation and consumed during reduction; the legacy
// output layout omits query lengths, so this bookkeeping is what makes
// normalization possible.
type FragLengths map[string]map[string]uint64

// Total returns the summed fragment length for one genome.  Fragments
// partition the genome, so this equals the genome's sequence length.
func (f FragLengths) Total(genome string) uint64 {
	var n uint64
	for _, l := range f[genome] {
		n += l
	}
	return n
}

// FragmentFiles splits every sequence of each genome into consecutive
// non-overlapping fragments of at most fragSize bases (the final fragment
// of a sequence may be shorter) and writes one fragmented FASTA file per
// genome under outDir, named <stem>-fragments<ext>.  Fragment IDs are
// "frag%05d", numbered across all sequences of one genome.
//
// It returns the fragment file paths in genome order plus the
// fragment-length bookkeeping.  No bases are dropped or duplicated:
// per genome, the fragment lengths sum to the genome length.
func FragmentFiles(ctx context.Context, genomes []Genome, outDir string, fragSize int) ([]string, FragLengths, error) {
	if fragSize <= 0 {
		return nil, nil, errors.E(errors.Invalid, fmt.Sprintf("ani: fragment size %d, must be positive", fragSize))
	}
	fragLens := make(FragLengths, len(genomes))
	paths := make([]string, 0, len(genomes))
	for _, g := range genomes {
		outPath := filepath.Join(outDir, g.Name+FragmentSuffix+plainExt(g.Path))
		lengths, err := fragmentFile(ctx, g.Path, outPath, fragSize)
		if err != nil {
			return nil, nil, err
		}
		fragLens[g.Name] = lengths
		paths = append(paths, outPath)
	}
	return paths, fragLens, nil
}

func fragmentFile(ctx context.Context, inPath, outPath string, fragSize int) (lengths map[string]uint64, err error) {
	seqs, err := fasta.ReadPath(inPath)
	if err != nil {
		return nil, errors.E(err, "fragmenting "+inPath)
	}
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return nil, errors.E(err, "creating fragment file "+outPath)
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := fasta.NewWriter(out.Writer(ctx))
	lengths = make(map[string]uint64)
	count := 0
	for _, seq := range seqs {
		for idx := 0; idx < len(seq.Data); idx += fragSize {
			count++
			end := idx + fragSize
			if end > len(seq.Data) {
				end = len(seq.Data)
			}
			id := fmt.Sprintf("frag%05d", count)
			if err := w.Write(fasta.Seq{Name: id, Data: seq.Data[idx:end]}); err != nil {
				return nil, errors.E(err, "writing fragment file "+outPath)
			}
			lengths[id] = uint64(end - idx)
		}
	}
	return lengths, nil
}

// FragLengthsFromFiles rebuilds the fragment-length bookkeeping from
// existing fragment files, keyed by the genome name recovered from the
// "-fragments" naming convention.  Used when parsing resumes after a
// separate planning run.
func FragLengthsFromFiles(fragFiles []string) (FragLengths, error) {
	fragLens := make(FragLengths, len(fragFiles))
	for _, path := range fragFiles {
		seqs, err := fasta.ReadPath(path)
		if err != nil {
			return nil, errors.E(err, "reading fragment file "+path)
		}
		lengths := make(map[string]uint64, len(seqs))
		for _, s := range seqs {
			lengths[s.Name] = uint64(len(s.Data))
		}
		fragLens[fragGenomeName(path)] = lengths
	}
	return fragLens, nil
}

// fragGenomeName recovers "file1" from ".../file1-fragments.fna".
func fragGenomeName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, FragmentSuffix)
}

// plainExt returns the FASTA extension of a genome path, dropping a
// trailing ".gz": fragment files are always written uncompressed.
func plainExt(path string) string {
	return filepath.Ext(strings.TrimSuffix(path, ".gz"))
}
