package ani

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/genomealign/anib/blast"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// pairResult is the reduction of one output file, tagged with the pair it
// belongs to.  ok is false for files that do not belong to this batch.
type pairResult struct {
	query, subject string
	stats          PairStats
	ok             bool
}

// ProcessBlastDir reduces every *.blast_tab file under dir into the batch's
// result matrices.  Files whose names do not follow the
// <query>_vs_<subject> convention, or that name genomes outside the batch,
// are logged and skipped, since the directory may hold output from other
// analyses.  Each pair's file is independent, so files are parsed in
// parallel; a parse failure in any file fails the batch.
func ProcessBlastDir(ctx context.Context, dir string, mode blast.Mode, genomes []Genome, fragLens FragLengths) (*Matrices, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.blast_tab"))
	if err != nil {
		return nil, errors.E(err, "listing "+dir)
	}
	lengths := GenomeLengths(genomes)

	results := make([]pairResult, len(paths))
	err = traverse.Each(len(paths), func(i int) error {
		path := paths[i]
		query, subject, ok := blast.SplitPairStem(path)
		if !ok {
			log.Printf("skipping %s: not a pairwise output file", path)
			return nil
		}
		if _, known := lengths[query]; !known {
			log.Printf("skipping %s: unknown query genome %q", path, query)
			return nil
		}
		if _, known := lengths[subject]; !known {
			log.Printf("skipping %s: unknown subject genome %q", path, subject)
			return nil
		}
		stats, err := reduceFile(ctx, path, mode, fragLens[query])
		if err != nil {
			return err
		}
		results[i] = pairResult{query: query, subject: subject, stats: stats, ok: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m := NewMatrices(genomes)
	for _, r := range results {
		if !r.ok {
			continue
		}
		if !r.stats.HasHits() {
			// Leave the no-data sentinel in place.
			log.Printf("%s vs %s: no alignment hits", r.query, r.subject)
			continue
		}
		coverage := float64(r.stats.AlignedLength) / float64(lengths[r.query])
		if coverage > 1 {
			// Alignments cannot claim more bases than the genome contains.
			coverage = 1
		}
		identity := r.stats.PctIdentity / 100
		m.Identity.Set(r.query, r.subject, identity)
		m.Coverage.Set(r.query, r.subject, coverage)
		m.AlignedLength.Set(r.query, r.subject, float64(r.stats.AlignedLength))
		m.SimErrors.Set(r.query, r.subject, float64(r.stats.SimErrors))
		m.Hadamard.Set(r.query, r.subject, identity*coverage)
	}
	return m, nil
}

func reduceFile(ctx context.Context, path string, mode blast.Mode, fragLens map[string]uint64) (stats PairStats, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return PairStats{}, errors.E(err, fmt.Sprintf("opening %s", path))
	}
	defer file.CloseAndReport(ctx, in, &err)
	return ReduceHits(blast.NewTabScanner(in.Reader(ctx), path, mode), fragLens)
}
