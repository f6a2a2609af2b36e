// pkg/chunk/window.go

package chunk

import (
	"io"

	"github.com/pkg/errors"
)

// Window pulls fixed-size reads from a stream into a growing buffer and lets
// the caller cut completed prefixes off the front.
type Window struct {
	r         io.Reader
	chunkSize int
	op        []byte
	buf       []byte
	eof       bool
}

func NewWindow(r io.Reader, chunkSize int) *Window {
	if chunkSize <= 0 {
		panic("chunk size of window should > 0")
	}
	return &Window{r: r, chunkSize: chunkSize, op: make([]byte, chunkSize)}
}

// ReadNext performs a single read of up to ChunkSize bytes and appends the
// result to the buffer. Reaching the end of the source sets EOF for good;
// an empty read without error is not treated as the end.
func (w *Window) ReadNext() error {
	if w.eof {
		return nil
	}
	n, err := w.r.Read(w.op)
	if n > 0 {
		w.buf = append(w.buf, w.op[:n]...)
	}
	if err == io.EOF {
		w.eof = true
		logger.Debugf("window: EOF reached, %d bytes buffered", len(w.buf))
		return nil
	}
	return errors.Wrap(err, "window read")
}

// Cut removes and returns buf[:index], keeping the rest for later reads.
func (w *Window) Cut(index int) []byte {
	if index <= 0 {
		return []byte{}
	}
	if index >= len(w.buf) {
		return w.TakeAll()
	}
	prefix := w.buf[:index:index]
	w.buf = w.buf[index:]
	return prefix
}

// TakeAll drains the whole buffer.
func (w *Window) TakeAll() []byte {
	b := w.buf
	w.buf = nil
	if b == nil {
		b = []byte{}
	}
	return b
}

// Bytes exposes the buffered, not yet cut bytes. Callers must not keep it
// across ReadNext or Cut.
func (w *Window) Bytes() []byte { return w.buf }

func (w *Window) Len() int       { return len(w.buf) }
func (w *Window) Empty() bool    { return len(w.buf) == 0 }
func (w *Window) EOF() bool      { return w.eof }
func (w *Window) ChunkSize() int { return w.chunkSize }
