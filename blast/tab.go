package blast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Hit is one alignment record from a tabular BLAST output file, normalized
// across the two toolchain layouts.
type Hit struct {
	// QueryID is the query fragment identifier (e.g. "frag00042").
	QueryID string
	// SubjectID is the subject sequence identifier.
	SubjectID string
	// AlignLen is the number of aligned columns, including gap columns.
	AlignLen int
	// Mismatches is the number of mismatching aligned columns.
	Mismatches int
	// PctIdentity is the tool-reported percent identity (0..100).
	PctIdentity float64
	// Identical is the number of identical aligned columns.  Reported
	// directly by BLAST+ (nident); derived for the legacy layout.
	Identical int
	// QueryLen is the full query fragment length.  Reported by BLAST+
	// (qlen); zero for the legacy layout, which omits it.  Callers fill it
	// from the fragment-length map.
	QueryLen int
	// Gaps is the number of gap columns.  Derived for BLAST+
	// (length - nident - mismatch); the gap column for the legacy layout.
	Gaps int
	// Fields holds the raw tab-separated fields as read from the file.
	Fields []string
}

// Column counts of the two tabular layouts.  The layout is chosen by mode,
// never sniffed from content.
const (
	blastPlusColumns = 14 // qseqid sseqid length mismatch pident nident qlen slen qstart qend sstart send positive ppos
	legacyColumns    = 12 // qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore
)

// TabScanner reads tabular BLAST output one hit at a time:
//
//	sc := blast.NewTabScanner(r, path, mode)
//	for sc.Scan() {
//		hit := sc.Hit()
//		...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// A malformed line stops the scan with an Invalid error naming the file and
// line; bad lines are never skipped silently.  An empty file is valid and
// yields zero hits.
type TabScanner struct {
	scanner *bufio.Scanner
	path    string
	mode    Mode
	line    int
	hit     Hit
	err     error
}

// NewTabScanner returns a scanner over r, which holds output at path
// produced by the given mode's aligner.  The path is used in error messages
// only.
func NewTabScanner(r io.Reader, path string, mode Mode) *TabScanner {
	s := &TabScanner{scanner: bufio.NewScanner(r), path: path, mode: mode}
	if !mode.valid() {
		s.err = errors.E(errors.NotSupported, fmt.Sprintf("blast: unsupported mode %d", int(mode)))
	}
	return s
}

// Scan advances to the next hit.  It returns false at end of input or on
// error; Err distinguishes the two.
func (s *TabScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.scanner.Scan() {
		s.line++
		text := s.scanner.Text()
		if text == "" {
			continue
		}
		hit, err := parseHit(text, s.mode)
		if err != nil {
			s.err = errors.E(errors.Invalid, fmt.Sprintf("%s:%d: %v", s.path, s.line, err))
			return false
		}
		s.hit = hit
		return true
	}
	if err := s.scanner.Err(); err != nil {
		s.err = errors.E(err, fmt.Sprintf("reading %s", s.path))
	}
	return false
}

// Hit returns the hit read by the last successful Scan.
func (s *TabScanner) Hit() Hit { return s.hit }

// Err returns the first error encountered, or nil after a clean end of
// input.
func (s *TabScanner) Err() error { return s.err }

func parseHit(line string, mode Mode) (Hit, error) {
	fields := strings.Split(line, "\t")
	hit := Hit{Fields: fields}
	switch mode {
	case BlastPlus:
		if len(fields) != blastPlusColumns {
			return Hit{}, fmt.Errorf("want %d tab-separated fields, got %d", blastPlusColumns, len(fields))
		}
		hit.QueryID = fields[0]
		hit.SubjectID = fields[1]
		var err error
		if hit.AlignLen, err = parseInt(fields[2], "length"); err != nil {
			return Hit{}, err
		}
		if hit.Mismatches, err = parseInt(fields[3], "mismatch"); err != nil {
			return Hit{}, err
		}
		if hit.PctIdentity, err = parseFloat(fields[4], "pident"); err != nil {
			return Hit{}, err
		}
		if hit.Identical, err = parseInt(fields[5], "nident"); err != nil {
			return Hit{}, err
		}
		if hit.QueryLen, err = parseInt(fields[6], "qlen"); err != nil {
			return Hit{}, err
		}
		// Remaining coordinate and positives columns are carried in Fields.
		hit.Gaps = hit.AlignLen - hit.Identical - hit.Mismatches
		if hit.Gaps < 0 {
			return Hit{}, fmt.Errorf("inconsistent counts: length %d < nident %d + mismatch %d",
				hit.AlignLen, hit.Identical, hit.Mismatches)
		}
	case Legacy:
		if len(fields) != legacyColumns {
			return Hit{}, fmt.Errorf("want %d tab-separated fields, got %d", legacyColumns, len(fields))
		}
		hit.QueryID = fields[0]
		hit.SubjectID = fields[1]
		var err error
		if hit.PctIdentity, err = parseFloat(fields[2], "pident"); err != nil {
			return Hit{}, err
		}
		if hit.AlignLen, err = parseInt(fields[3], "length"); err != nil {
			return Hit{}, err
		}
		if hit.Mismatches, err = parseInt(fields[4], "mismatch"); err != nil {
			return Hit{}, err
		}
		if hit.Gaps, err = parseInt(fields[5], "gaps"); err != nil {
			return Hit{}, err
		}
		hit.Identical = hit.AlignLen - hit.Gaps - hit.Mismatches
	default:
		return Hit{}, fmt.Errorf("unsupported mode %d", int(mode))
	}
	return hit, nil
}

func parseInt(s, col string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: bad integer %q", col, s)
	}
	return v, nil
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: bad number %q", col, s)
	}
	return v, nil
}
