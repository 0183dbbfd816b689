package fasta

import "io"

// lineWidth is the number of sequence characters written per line.
const lineWidth = 60

var newline = []byte{'\n'}

// Writer is a FASTA file writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTA writer
// that writes sequences to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the sequence s in FASTA format, wrapping the sequence data
// at a fixed line width.  An error is returned if the write failed.
func (w *Writer) Write(s Seq) error {
	w.writeString(">")
	w.writeln(s.Name)
	data := s.Data
	for len(data) > lineWidth {
		w.writeln(data[:lineWidth])
		data = data[lineWidth:]
	}
	w.writeln(data)
	return w.err
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *Writer) writeln(line string) {
	w.writeString(line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
