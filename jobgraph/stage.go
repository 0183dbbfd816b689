package jobgraph

import (
	"context"
	"io"

	"github.com/genomealign/anib/ani"
	"github.com/genomealign/anib/blast"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// StageInputs copies each genome FASTA into the builder's output directory.
// The legacy toolchain indexes databases in place next to their source
// file, so its database-build commands reference the staged copies;
// planning a Legacy batch must stage before the graph executes.  Staging is
// idempotent: re-runs overwrite the copies.
func StageInputs(ctx context.Context, genomes []ani.Genome, b *blast.Builder) error {
	for _, g := range genomes {
		if err := copyFile(ctx, g.Path, b.DBPath(g.Path)); err != nil {
			return errors.E(err, "staging "+g.Path)
		}
	}
	return nil
}

func copyFile(ctx context.Context, src, dst string) (err error) {
	in, err := file.Open(ctx, src)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	out, err := file.Create(ctx, dst)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = io.Copy(out.Writer(ctx), in.Reader(ctx))
	return err
}
