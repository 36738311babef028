package msg

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter writes every complete line to W with Prefix in front of it.
// Incomplete lines are held back until a newline or Flush.
type PrefixWriter struct {
	Prefix string
	W      io.Writer

	mu  sync.Mutex
	buf bytes.Buffer
}

func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{Prefix: prefix, W: w}
}

func (w *PrefixWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		if err := w.writeLine(w.buf.Next(i + 1)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes out a trailing line that had no newline
func (w *PrefixWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}
	line := append(bytes.Clone(w.buf.Next(w.buf.Len())), '\n')
	return w.writeLine(line)
}

func (w *PrefixWriter) writeLine(line []byte) error {
	// one write per line, the destination may be shared with another stream
	out := make([]byte, 0, len(w.Prefix)+len(line))
	out = append(out, w.Prefix...)
	out = append(out, line...)
	_, err := w.W.Write(out)
	return err
}
