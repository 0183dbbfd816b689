// Package blast constructs command lines for the two BLAST toolchains used
// for pairwise average nucleotide identity (ANI) comparisons, and parses
// their tabular output.
//
// Two toolchains are supported: the current NCBI BLAST+ programs
// (makeblastdb/blastn) and the legacy NCBI BLAST programs
// (formatdb/blastall).  The two use different binaries, different flag sets
// and different tabular output layouts, but yield equivalent statistics.
// The toolchain is selected once per batch as a Mode value; no component
// re-validates mode strings.
package blast

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Mode selects the BLAST toolchain used for a comparison batch.
type Mode int

const (
	// BlastPlus is the current NCBI BLAST+ toolchain (makeblastdb, blastn).
	BlastPlus Mode = iota
	// Legacy is the old NCBI BLAST toolchain (formatdb, blastall).
	Legacy
)

// String returns the conventional method label for the mode.
func (m Mode) String() string {
	switch m {
	case BlastPlus:
		return "ANIb"
	case Legacy:
		return "ANIblastall"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a method label to a Mode.  Unknown labels yield a
// NotSupported error.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ANIb":
		return BlastPlus, nil
	case "ANIblastall":
		return Legacy, nil
	}
	return 0, errors.E(errors.NotSupported, fmt.Sprintf("blast: unsupported mode %q (want ANIb or ANIblastall)", s))
}

func (m Mode) valid() bool {
	return m == BlastPlus || m == Legacy
}
