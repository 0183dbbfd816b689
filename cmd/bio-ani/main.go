// bio-ani plans and reduces pairwise average nucleotide identity (ANIb)
// comparisons over a directory of genome FASTA files.
//
// The tool has three phases, exposed as subcommands:
//
//	fragment   split each genome into fixed-length query fragments
//	plan       fragment, then emit the db-build/alignment job graph for an
//	           external scheduler
//	parse      reduce the completed alignment output into result matrices
//
// Execution of the planned BLAST commands is deliberately not part of this
// tool; a scheduler runs the listing, honoring its dependency column.
package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/genomealign/anib/ani"
	"github.com/genomealign/anib/blast"
	"github.com/genomealign/anib/jobgraph"
	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

func newCmdFragment() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fragment",
		Short:    "Split genomes into alignment query fragments",
		ArgsName: "genomedir outdir",
	}
	fragSize := cmd.Flags.Int("fragment-size", ani.DefaultFragmentSize, "Maximum fragment length in bases")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("fragment takes genomedir outdir, but got %v", argv)
		}
		ctx := vcontext.Background()
		genomes, err := ani.DirSource{Dir: argv[0]}.Genomes()
		if err != nil {
			return err
		}
		fragFiles, _, err := ani.FragmentFiles(ctx, genomes, argv[1], *fragSize)
		if err != nil {
			return err
		}
		log.Printf("fragmented %d genomes into %s", len(fragFiles), argv[1])
		return nil
	})
	return cmd
}

func newCmdPlan() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "plan",
		Short:    "Fragment genomes and emit the alignment job graph",
		ArgsName: "genomedir outdir",
	}
	modeFlag := cmd.Flags.String("mode", "ANIb", "Comparison method: ANIb (BLAST+) or ANIblastall (legacy BLAST)")
	fragSize := cmd.Flags.Int("fragment-size", ani.DefaultFragmentSize, "Maximum fragment length in bases")
	jobsPath := cmd.Flags.String("jobs", "", "Job listing output path; defaults to <outdir>/jobs.tsv")
	conf := blast.DefaultConfig
	cmd.Flags.StringVar(&conf.MakeBlastDB, "makeblastdb", conf.MakeBlastDB, "Path to the makeblastdb executable")
	cmd.Flags.StringVar(&conf.BlastN, "blastn", conf.BlastN, "Path to the blastn executable")
	cmd.Flags.StringVar(&conf.FormatDB, "formatdb", conf.FormatDB, "Path to the formatdb executable")
	cmd.Flags.StringVar(&conf.BlastAll, "blastall", conf.BlastAll, "Path to the blastall executable")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("plan takes genomedir outdir, but got %v", argv)
		}
		genomeDir, outDir := argv[0], argv[1]
		mode, err := blast.ParseMode(*modeFlag)
		if err != nil {
			return err
		}
		ctx := vcontext.Background()
		genomes, err := ani.DirSource{Dir: genomeDir}.Genomes()
		if err != nil {
			return err
		}
		builder, err := blast.NewBuilder(mode, conf, outDir)
		if err != nil {
			return err
		}
		fragFiles, _, err := ani.FragmentFiles(ctx, genomes, outDir, *fragSize)
		if err != nil {
			return err
		}
		if mode == blast.Legacy {
			if err := jobgraph.StageInputs(ctx, genomes, builder); err != nil {
				return err
			}
		}
		graph := jobgraph.Build(genomes, fragFiles, builder)

		listPath := *jobsPath
		if listPath == "" {
			listPath = filepath.Join(outDir, "jobs.tsv")
		}
		if err := writeListing(ctx, graph, listPath); err != nil {
			return err
		}
		log.Printf("planned %d jobs (%d db builds) for %d genomes into %s",
			len(graph.Jobs), len(graph.Roots()), len(genomes), listPath)
		return nil
	})
	return cmd
}

func writeListing(ctx context.Context, graph *jobgraph.Graph, path string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return graph.WriteListing(out.Writer(ctx))
}

func newCmdParse() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "parse",
		Short:    "Reduce alignment output into ANI result matrices",
		ArgsName: "genomedir blastdir outdir",
	}
	modeFlag := cmd.Flags.String("mode", "ANIb", "Comparison method: ANIb (BLAST+) or ANIblastall (legacy BLAST)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("parse takes genomedir blastdir outdir, but got %v", argv)
		}
		genomeDir, blastDir, outDir := argv[0], argv[1], argv[2]
		mode, err := blast.ParseMode(*modeFlag)
		if err != nil {
			return err
		}
		ctx := vcontext.Background()
		genomes, err := ani.DirSource{Dir: genomeDir}.Genomes()
		if err != nil {
			return err
		}
		fragFiles, err := filepath.Glob(filepath.Join(blastDir, "*"+ani.FragmentSuffix+".*"))
		if err != nil {
			return err
		}
		fragLens, err := ani.FragLengthsFromFiles(fragFiles)
		if err != nil {
			return err
		}
		matrices, err := ani.ProcessBlastDir(ctx, blastDir, mode, genomes, fragLens)
		if err != nil {
			return err
		}
		if err := matrices.WriteDir(ctx, outDir, mode.String()); err != nil {
			return err
		}
		log.Printf("wrote %s matrices for %d genomes to %s", mode, len(genomes), outDir)
		return nil
	})
	return cmd
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "bio-ani",
		Short:    "Pairwise average nucleotide identity comparisons",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdFragment(),
			newCmdPlan(),
			newCmdParse(),
		},
	})
}
