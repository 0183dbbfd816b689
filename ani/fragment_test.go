package ani_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genomealign/anib/ani"
	"github.com/genomealign/anib/encoding/fasta"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// writeGenome writes a single FASTA file and returns its Genome record.
func writeGenome(t *testing.T, dir, name string, seqs ...fasta.Seq) ani.Genome {
	path := filepath.Join(dir, name+".fna")
	var b strings.Builder
	w := fasta.NewWriter(&b)
	var total uint64
	for _, s := range seqs {
		assert.NoError(t, w.Write(s))
		total += uint64(len(s.Data))
	}
	assert.NoError(t, ioutil.WriteFile(path, []byte(b.String()), 0600))
	return ani.Genome{Name: name, Path: path, Length: total}
}

func TestFragmentFiles(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	// 2500 bases split at 1000 must yield fragments of 1000, 1000, 500.
	g := writeGenome(t, tempDir, "file1", fasta.Seq{Name: "chr1", Data: strings.Repeat("ACGTA", 500)})
	outDir := filepath.Join(tempDir, "out")
	assert.NoError(t, os.MkdirAll(outDir, 0700))
	fragFiles, fragLens, err := ani.FragmentFiles(ctx, []ani.Genome{g}, outDir, 1000)
	assert.NoError(t, err)
	assert.EQ(t, len(fragFiles), 1)
	expect.EQ(t, filepath.Base(fragFiles[0]), "file1-fragments.fna")

	expect.EQ(t, fragLens["file1"], map[string]uint64{
		"frag00001": 1000,
		"frag00002": 1000,
		"frag00003": 500,
	})
	// No bases dropped or duplicated.
	expect.EQ(t, fragLens.Total("file1"), g.Length)

	// The written file holds the same partition, in order.
	seqs, err := fasta.ReadPath(fragFiles[0])
	assert.NoError(t, err)
	assert.EQ(t, len(seqs), 3)
	whole := strings.Repeat("ACGTA", 500)
	expect.EQ(t, seqs[0].Data, whole[:1000])
	expect.EQ(t, seqs[1].Data, whole[1000:2000])
	expect.EQ(t, seqs[2].Data, whole[2000:])
}

func TestFragmentFilesMultiSequence(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	// Fragment numbering continues across sequences of one genome.
	g := writeGenome(t, tempDir, "multi",
		fasta.Seq{Name: "chr1", Data: strings.Repeat("A", 250)},
		fasta.Seq{Name: "chr2", Data: strings.Repeat("C", 150)})
	fragFiles, fragLens, err := ani.FragmentFiles(ctx, []ani.Genome{g}, tempDir, 100)
	assert.NoError(t, err)

	expect.EQ(t, fragLens["multi"], map[string]uint64{
		"frag00001": 100,
		"frag00002": 100,
		"frag00003": 50,
		"frag00004": 100,
		"frag00005": 50,
	})
	expect.EQ(t, fragLens.Total("multi"), g.Length)

	seqs, err := fasta.ReadPath(fragFiles[0])
	assert.NoError(t, err)
	for _, s := range seqs {
		expect.True(t, uint64(len(s.Data)) <= 100, "fragment %s has %d bases", s.Name, len(s.Data))
	}
}

func TestFragLengthsFromFiles(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	g := writeGenome(t, tempDir, "file2", fasta.Seq{Name: "chr1", Data: strings.Repeat("G", 1234)})
	fragFiles, want, err := ani.FragmentFiles(ctx, []ani.Genome{g}, tempDir, 500)
	assert.NoError(t, err)

	got, err := ani.FragLengthsFromFiles(fragFiles)
	assert.NoError(t, err)
	expect.EQ(t, got, want)
}

func TestFragmentFilesBadSize(t *testing.T) {
	_, _, err := ani.FragmentFiles(context.Background(), nil, "out", 0)
	expect.True(t, err != nil)
}
