// pkg/gzmember/splitter.go

package gzmember

import (
	"io"

	"BlockPress/pkg/chunk"
	"BlockPress/pkg/utils"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("blockpress")

var (
	ErrEmptyStream = errors.New("the input is empty")
	ErrNotGzip     = errors.New("no gzip header was found, the input is not a gzip stream")
)

// Splitter yields the members of a stream made of concatenated gzip members.
// Boundaries are found by looking for the next member header, so a header
// pattern inside compressed data would produce a bogus split.
type Splitter struct {
	w       *chunk.Window
	checked bool
	// scan resumes here after more bytes were read
	from int
}

var _ chunk.Iterator = (*Splitter)(nil)

func NewSplitter(w *chunk.Window) *Splitter {
	return &Splitter{w: w, from: HeaderLen}
}

// NewReaderSplitter is a shortcut for NewSplitter(chunk.NewWindow(r, chunkSize)).
func NewReaderSplitter(r io.Reader, chunkSize int) *Splitter {
	return NewSplitter(chunk.NewWindow(r, chunkSize))
}

// Next returns the next member. The first call fails with ErrEmptyStream or
// ErrNotGzip if the stream does not start with a member header.
func (s *Splitter) Next() ([]byte, error) {
	if !s.checked {
		if err := s.checkHeader(); err != nil {
			return nil, err
		}
		s.checked = true
	}
	if s.w.Empty() && s.w.EOF() {
		return nil, io.EOF
	}

	for {
		idx := FindNextHeader(s.w.Bytes(), s.from)
		if idx >= 0 {
			s.from = HeaderLen
			member := s.w.Cut(idx)
			logger.Debugf("gzip member of %d bytes found", len(member))
			return member, nil
		}
		if s.w.EOF() {
			break
		}
		// only the tail that could still hold a partial header needs a rescan
		if n := s.w.Len() - HeaderLen + 1; n > s.from {
			s.from = n
		}
		if err := s.w.ReadNext(); err != nil {
			return nil, err
		}
	}

	s.from = HeaderLen
	if s.w.Empty() {
		return nil, io.EOF
	}
	member := s.w.TakeAll()
	logger.Debugf("last gzip member of %d bytes", len(member))
	return member, nil
}

func (s *Splitter) checkHeader() error {
	for s.w.Len() < HeaderLen && !s.w.EOF() {
		if err := s.w.ReadNext(); err != nil {
			return err
		}
	}
	if s.w.Empty() {
		return ErrEmptyStream
	}
	if !IsHeaderAt(s.w.Bytes(), 0) {
		logger.Warnf("the stream does not start with a gzip header")
		return ErrNotGzip
	}
	return nil
}
