package ani

import (
	"fmt"

	"github.com/genomealign/anib/blast"
	"github.com/grailbio/base/errors"
)

// Hit acceptance thresholds from the published method: a fragment hit
// contributes only if it covers more than 70% of the fragment at more than
// 30% identity.
const (
	minCoverageFrac = 0.7
	minIdentityFrac = 0.3
)

// PairStats is the reduction of one alignment output file: all hits of one
// query genome's fragments against one subject genome.
type PairStats struct {
	// AlignedLength is the total ungapped aligned length over accepted
	// fragments.
	AlignedLength uint64
	// SimErrors is the total mismatch count over accepted fragments.
	SimErrors uint64
	// PctIdentity is the mean tool-reported percent identity (0..100) over
	// accepted fragments.
	PctIdentity float64
	// Hits is the number of fragments that contributed.
	Hits int
}

// HasHits reports whether any fragment survived filtering.  A pair with no
// hits is recorded as "no data", never as zero identity.
func (p PairStats) HasHits() bool { return p.Hits > 0 }

// ReduceHits drains the scanner and aggregates its hits into PairStats.
//
// Per hit, the ungapped aligned length is the aligned column count minus the
// gap columns, and the identical-base count is that minus the mismatches.
// Both are normalized by the full fragment length: reported by the tool for
// the current layout, and looked up in fragLens for the legacy layout, which
// omits it.  Hits below the coverage or identity thresholds are dropped, and
// only the first surviving hit per fragment counts (the aligner emits the
// best hit first).
func ReduceHits(sc *blast.TabScanner, fragLens map[string]uint64) (PairStats, error) {
	var stats PairStats
	var pidSum float64
	seen := make(map[string]bool)
	for sc.Scan() {
		hit := sc.Hit()
		qlen := hit.QueryLen
		if qlen == 0 {
			qlen = int(fragLens[hit.QueryID])
		}
		if qlen == 0 {
			return PairStats{}, errors.E(errors.Invalid,
				fmt.Sprintf("ani: no recorded length for query fragment %q", hit.QueryID))
		}
		alnLen := hit.AlignLen - hit.Gaps
		ids := alnLen - hit.Mismatches
		if float64(alnLen)/float64(qlen) <= minCoverageFrac ||
			float64(ids)/float64(qlen) <= minIdentityFrac {
			continue
		}
		if seen[hit.QueryID] {
			continue
		}
		seen[hit.QueryID] = true
		stats.AlignedLength += uint64(alnLen)
		stats.SimErrors += uint64(hit.Mismatches)
		pidSum += hit.PctIdentity
		stats.Hits++
	}
	if err := sc.Err(); err != nil {
		return PairStats{}, err
	}
	if stats.Hits > 0 {
		stats.PctIdentity = pidSum / float64(stats.Hits)
	}
	return stats, nil
}
