package blast_test

import (
	"strings"
	"testing"

	"github.com/genomealign/anib/blast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	conf := blast.DefaultConfig
	assert.Equal(t, "makeblastdb", conf.MakeBlastDB)
	assert.Equal(t, "blastn", conf.BlastN)
	assert.Equal(t, "formatdb", conf.FormatDB)
	assert.Equal(t, "blastall", conf.BlastAll)
	assert.Equal(t, 150, conf.XDropGapFinal)
	assert.Equal(t, "1e-15", conf.EValue)
	assert.Equal(t, 1, conf.MaxTargetSeqs)
	assert.Equal(t, -1, conf.MismatchPenalty)
}

// Binary paths come from the config, never from ambient state.
func TestConfigBinaryOverrides(t *testing.T) {
	conf := blast.DefaultConfig
	conf.MakeBlastDB = "/opt/blast/bin/makeblastdb"
	conf.BlastN = "/opt/blast/bin/blastn"
	b, err := blast.NewBuilder(blast.BlastPlus, conf, "out")
	require.NoError(t, err)

	cmd, _ := b.DBBuildCmd("file1.fna")
	assert.True(t, strings.HasPrefix(cmd, "/opt/blast/bin/makeblastdb "))
	cmd, _ = b.AlignmentCmd("out/file1-fragments.fna", "file2.fna")
	assert.True(t, strings.HasPrefix(cmd, "/opt/blast/bin/blastn "))

	conf = blast.DefaultConfig
	conf.FormatDB = "/opt/blast/bin/formatdb"
	conf.BlastAll = "/opt/blast/bin/blastall"
	b, err = blast.NewBuilder(blast.Legacy, conf, "out")
	require.NoError(t, err)

	cmd, _ = b.DBBuildCmd("file1.fna")
	assert.True(t, strings.HasPrefix(cmd, "/opt/blast/bin/formatdb "))
	cmd, _ = b.AlignmentCmd("out/file1-fragments.fna", "file2.fna")
	assert.True(t, strings.HasPrefix(cmd, "/opt/blast/bin/blastall "))
}
