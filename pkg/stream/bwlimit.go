// pkg/stream/bwlimit.go

package stream

import (
	"fmt"
	"io"

	"github.com/juju/ratelimit"
)

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if l.r != nil {
		l.r.Wait(int64(n))
	}
	return n, err
}

// Seek calls the Seek in the underlying reader.
func (l *limitedReader) Seek(offset int64, whence int) (int64, error) {
	if s, ok := l.Reader.(io.Seeker); ok {
		return s.Seek(offset, whence)
	}
	return 0, fmt.Errorf("%+v does not support Seek()", l.Reader)
}

type limitedWriter struct {
	io.Writer
	w *ratelimit.Bucket
}

func (l *limitedWriter) Write(buf []byte) (int, error) {
	if l.w != nil {
		l.w.Wait(int64(len(buf)))
	}
	return l.Writer.Write(buf)
}

// Seek calls the Seek in the underlying writer, the archive header is
// written in place once all blocks are out.
func (l *limitedWriter) Seek(offset int64, whence int) (int64, error) {
	if s, ok := l.Writer.(io.Seeker); ok {
		return s.Seek(offset, whence)
	}
	return 0, fmt.Errorf("%+v does not support Seek()", l.Writer)
}

func newBucket(limit int64) *ratelimit.Bucket {
	if limit <= 0 {
		return nil
	}
	// allow a burst of one second worth of data
	return ratelimit.NewBucketWithRate(float64(limit), limit)
}

// NewLimitedReader throttles r to `limit` bytes per second; 0 means no limit.
func NewLimitedReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &limitedReader{r, newBucket(limit)}
}

// NewLimitedWriter throttles w to `limit` bytes per second; 0 means no limit.
// The result stays seekable when w is.
func NewLimitedWriter(w io.Writer, limit int64) io.Writer {
	if limit <= 0 {
		return w
	}
	return &limitedWriter{w, newBucket(limit)}
}
