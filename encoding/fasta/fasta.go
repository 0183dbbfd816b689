// Package fasta contains code for reading and writing FASTA files.
// Briefly, FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appearing after a space is ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 64 // 64 MB
)

// Seq is one named sequence from a FASTA file.
type Seq struct {
	// Name is the sequence name, without the leading '>' and with anything
	// after the first space dropped.
	Name string
	// Data is the full sequence with line breaks removed.
	Data string
}

// Read parses all sequences from the given reader, in file order.
func Read(r io.Reader) ([]Seq, error) {
	var seqs []Seq
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seqName string
	var started bool
	var seq strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if started {
				seqs = append(seqs, Seq{Name: seqName, Data: seq.String()})
				seq.Reset()
			}
			seqName = strings.Split(line[1:], " ")[0]
			if seqName == "" {
				return nil, errors.Errorf("malformed FASTA file: empty sequence name")
			}
			started = true
		} else {
			if !started {
				return nil, errors.Errorf("malformed FASTA file: sequence data before first header")
			}
			seq.WriteString(line)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if !started {
		return nil, errors.Errorf("empty FASTA file")
	}
	seqs = append(seqs, Seq{Name: seqName, Data: seq.String()})
	return seqs, nil
}

// ReadPath parses all sequences from the file at path.  Files ending in ".gz"
// are decompressed transparently.
func ReadPath(path string) (seqs []Seq, err error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	var r io.Reader = in
	if strings.HasSuffix(path, ".gz") {
		gz, gerr := gzip.NewReader(in)
		if gerr != nil {
			return nil, errors.Wrapf(gerr, "gzip %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	seqs, err = Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return seqs, nil
}

// TotalLen returns the summed length of all sequences.
func TotalLen(seqs []Seq) uint64 {
	var n uint64
	for _, s := range seqs {
		n += uint64(len(s.Data))
	}
	return n
}
