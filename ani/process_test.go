package ani_test

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genomealign/anib/ani"
	"github.com/genomealign/anib/blast"
	"github.com/genomealign/anib/encoding/fasta"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestProcessBlastDir(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	genomeDir := filepath.Join(tempDir, "genomes")
	outDir := filepath.Join(tempDir, "out")
	assert.NoError(t, os.MkdirAll(genomeDir, 0700))
	assert.NoError(t, os.MkdirAll(outDir, 0700))

	genomes := []ani.Genome{
		writeGenome(t, genomeDir, "file1", fasta.Seq{Name: "chr1", Data: strings.Repeat("ACGTA", 500)}), // 2500
		writeGenome(t, genomeDir, "file2", fasta.Seq{Name: "chr1", Data: strings.Repeat("ACGTC", 400)}), // 2000
	}
	_, fragLens, err := ani.FragmentFiles(ctx, genomes, outDir, 1000)
	assert.NoError(t, err)

	// file1 vs file2: every file1 fragment aligns perfectly.
	forward := bpLine("frag00001", 1000, 0, 100, 1000, 1000) +
		bpLine("frag00002", 1000, 0, 100, 1000, 1000) +
		bpLine("frag00003", 500, 0, 100, 500, 500)
	assert.NoError(t, ioutil.WriteFile(filepath.Join(outDir, "file1_vs_file2.blast_tab"), []byte(forward), 0600))
	// file2 vs file1: the aligner found nothing.
	assert.NoError(t, ioutil.WriteFile(filepath.Join(outDir, "file2_vs_file1.blast_tab"), nil, 0600))
	// Output from some other analysis in the same directory is skipped.
	assert.NoError(t, ioutil.WriteFile(filepath.Join(outDir, "other_vs_file1.blast_tab"),
		[]byte(bpLine("frag00001", 1000, 0, 100, 1000, 1000)), 0600))

	m, err := ani.ProcessBlastDir(ctx, outDir, blast.BlastPlus, genomes, fragLens)
	assert.NoError(t, err)

	expect.EQ(t, m.Identity.Get("file1", "file2"), 1.0)
	expect.EQ(t, m.Coverage.Get("file1", "file2"), 1.0)
	expect.EQ(t, m.AlignedLength.Get("file1", "file2"), 2500.0)
	expect.EQ(t, m.SimErrors.Get("file1", "file2"), 0.0)
	expect.EQ(t, m.Hadamard.Get("file1", "file2"), 1.0)

	// No hits is recorded as no data, not as zero.
	expect.True(t, math.IsNaN(m.Identity.Get("file2", "file1")))
	expect.True(t, math.IsNaN(m.Coverage.Get("file2", "file1")))

	// Diagonals are self-comparisons.
	expect.EQ(t, m.Identity.Get("file1", "file1"), 1.0)
	expect.EQ(t, m.AlignedLength.Get("file2", "file2"), 2000.0)
}

func TestProcessBlastDirParseError(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	genomeDir := filepath.Join(tempDir, "genomes")
	assert.NoError(t, os.MkdirAll(genomeDir, 0700))
	genomes := []ani.Genome{
		writeGenome(t, genomeDir, "file1", fasta.Seq{Name: "chr1", Data: strings.Repeat("A", 100)}),
		writeGenome(t, genomeDir, "file2", fasta.Seq{Name: "chr1", Data: strings.Repeat("C", 100)}),
	}
	assert.NoError(t, ioutil.WriteFile(filepath.Join(tempDir, "file1_vs_file2.blast_tab"),
		[]byte("not\ta\tvalid\tline\n"), 0600))

	_, err := ani.ProcessBlastDir(ctx, tempDir, blast.BlastPlus, genomes, nil)
	expect.True(t, err != nil)
	expect.True(t, strings.Contains(err.Error(), "file1_vs_file2.blast_tab:1"), "got %v", err)
}

func TestWriteDir(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	genomes := []ani.Genome{{Name: "a", Length: 100}, {Name: "b", Length: 200}}
	m := ani.NewMatrices(genomes)
	m.Identity.Set("a", "b", 0.875)
	assert.NoError(t, m.WriteDir(ctx, tempDir, "ANIb"))

	for _, name := range []string{
		"ANIb_percentage_identity.tsv",
		"ANIb_alignment_coverage.tsv",
		"ANIb_alignment_lengths.tsv",
		"ANIb_similarity_errors.tsv",
		"ANIb_hadamard.tsv",
	} {
		_, err := os.Stat(filepath.Join(tempDir, name))
		expect.NoError(t, err, "missing %s", name)
	}
	data, err := ioutil.ReadFile(filepath.Join(tempDir, "ANIb_percentage_identity.tsv"))
	assert.NoError(t, err)
	expect.EQ(t, string(data), "\ta\tb\n"+"a\t1\t0.875\n"+"b\tNA\t1\n")
}
