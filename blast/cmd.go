package blast

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// tabExt is the extension given to tabular alignment output files.  The
// fragment/parse phases depend on this convention exactly.
const tabExt = ".blast_tab"

// fragmentSuffix is stripped from query stems when naming output files, so
// that a fragmented query file maps back to its genome name.
const fragmentSuffix = "-fragments"

// blastnOutFmt is the 14-column tabular format requested from blastn.
const blastnOutFmt = "6 qseqid sseqid length mismatch pident nident qlen slen qstart qend sstart send positive ppos"

// Config holds the binary paths and the fixed scoring/reporting constants
// embedded into generated command lines.  The zero value is not usable; start
// from DefaultConfig.  Values are passed explicitly, never read from global
// state.
type Config struct {
	// Binary names or paths, per toolchain.
	MakeBlastDB string // BLAST+ database builder
	BlastN      string // BLAST+ aligner
	FormatDB    string // legacy database builder
	BlastAll    string // legacy aligner

	// Fixed alignment parameters, shared by both toolchains.
	XDropGapFinal int    // -xdrop_gap_final / -X
	EValue        string // -evalue / -e

	// BLAST+ reporting limits.
	MaxTargetSeqs int // -max_target_seqs

	// Legacy scoring and reporting parameters.
	MismatchPenalty int // -q
	MaxAlignments   int // -b
	MaxDescriptions int // -v
}

// DefaultConfig mirrors the parameters of the published ANIb method.
var DefaultConfig = Config{
	MakeBlastDB:     "makeblastdb",
	BlastN:          "blastn",
	FormatDB:        "formatdb",
	BlastAll:        "blastall",
	XDropGapFinal:   150,
	EValue:          "1e-15",
	MaxTargetSeqs:   1,
	MismatchPenalty: -1,
	MaxAlignments:   1,
	MaxDescriptions: 1,
}

// Builder generates database-build and alignment command lines for one mode
// and one output directory.  It is a pure value: identical inputs always
// produce byte-identical command strings, and no method touches the
// filesystem.
type Builder struct {
	mode   Mode
	conf   Config
	outDir string
}

// NewBuilder returns a Builder for the given mode.  An unsupported mode
// yields a NotSupported error.
func NewBuilder(mode Mode, conf Config, outDir string) (*Builder, error) {
	if !mode.valid() {
		return nil, errors.E(errors.NotSupported, fmt.Sprintf("blast: unsupported mode %d", int(mode)))
	}
	return &Builder{mode: mode, conf: conf, outDir: outDir}, nil
}

// Mode returns the toolchain the builder is bound to.
func (b *Builder) Mode() Mode { return b.mode }

// OutDir returns the directory output files are placed under.
func (b *Builder) OutDir() string { return b.outDir }

// DBPath returns the database path for a genome: the genome's file name
// placed under the output directory.  The database-build and alignment
// commands both reference this path.
func (b *Builder) DBPath(genomePath string) string {
	return filepath.Join(b.outDir, filepath.Base(genomePath))
}

// DBBuildCmd returns the database-build command for one genome and the
// database path it produces.
//
// The legacy toolchain indexes its input in place, so the command references
// the staged copy of the genome under the output directory (see
// jobgraph.StageInputs); BLAST+ reads the input where it is and writes the
// database under the output directory.
func (b *Builder) DBBuildCmd(genomePath string) (cmd, dbPath string) {
	dbPath = b.DBPath(genomePath)
	switch b.mode {
	case BlastPlus:
		cmd = fmt.Sprintf("%s -dbtype nucl -in %s -title %s -out %s",
			b.conf.MakeBlastDB, genomePath, Stem(genomePath), dbPath)
	case Legacy:
		cmd = fmt.Sprintf("%s -p F -i %s -t %s",
			b.conf.FormatDB, dbPath, Stem(genomePath))
	default:
		log.Panicf("blast: builder with invalid mode %d", int(b.mode))
	}
	return cmd, dbPath
}

// OutputPath returns the alignment output path for a query/subject pair:
// <query-stem>_vs_<subject-stem>.blast_tab under the output directory.  A
// "-fragments" suffix on either stem is dropped, so fragmented query files
// name their parent genome.
func (b *Builder) OutputPath(queryPath, subjectPath string) string {
	q := strings.TrimSuffix(Stem(queryPath), fragmentSuffix)
	s := strings.TrimSuffix(Stem(subjectPath), fragmentSuffix)
	return filepath.Join(b.outDir, q+"_vs_"+s+tabExt)
}

// AlignmentCmd returns the alignment command for a fragmented query file
// against a subject genome's database, and the output file the command
// writes.  The database path embedded in the command is exactly
// DBPath(subjectPath).
func (b *Builder) AlignmentCmd(queryPath, subjectPath string) (cmd, outPath string) {
	outPath = b.OutputPath(queryPath, subjectPath)
	dbPath := b.DBPath(subjectPath)
	switch b.mode {
	case BlastPlus:
		cmd = fmt.Sprintf("%s -out %s -query %s -db %s "+
			"-xdrop_gap_final %d -dust no -evalue %s -max_target_seqs %d "+
			"-outfmt '%s' -task blastn",
			b.conf.BlastN, outPath, queryPath, dbPath,
			b.conf.XDropGapFinal, b.conf.EValue, b.conf.MaxTargetSeqs,
			blastnOutFmt)
	case Legacy:
		cmd = fmt.Sprintf("%s -p blastn -o %s -i %s -d %s "+
			"-X %d -q %d -F F -e %s -b %d -v %d -m 8",
			b.conf.BlastAll, outPath, queryPath, dbPath,
			b.conf.XDropGapFinal, b.conf.MismatchPenalty, b.conf.EValue,
			b.conf.MaxAlignments, b.conf.MaxDescriptions)
	default:
		log.Panicf("blast: builder with invalid mode %d", int(b.mode))
	}
	return cmd, outPath
}

// Stem returns the file name without directory, a trailing ".gz", or the
// final extension.  "genomes/file1.fna.gz" becomes "file1".
func Stem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SplitPairStem recovers the (query, subject) genome names from an alignment
// output path produced by OutputPath.  ok is false if the path does not
// follow the naming convention.
func SplitPairStem(path string) (query, subject string, ok bool) {
	stem := strings.TrimSuffix(filepath.Base(path), tabExt)
	i := strings.Index(stem, "_vs_")
	if i < 0 {
		return "", "", false
	}
	return stem[:i], stem[i+len("_vs_"):], true
}
