// pkg/chunk/fixed.go

package chunk

import (
	"io"

	"github.com/pkg/errors"
)

type fixedSplitter struct {
	r    io.Reader
	size int
	done bool
}

// NewFixedSplitter cuts r into consecutive blocks of exactly size bytes.
// Only the last block may be shorter. An empty input yields no blocks.
func NewFixedSplitter(r io.Reader, size int) Iterator {
	if size <= 0 {
		panic("block size should > 0")
	}
	return &fixedSplitter{r: r, size: size}
}

func (s *fixedSplitter) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	block := make([]byte, s.size)
	n, err := io.ReadFull(s.r, block)
	switch {
	case err == io.EOF:
		s.done = true
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		s.done = true
		return block[:n:n], nil
	case err != nil:
		return nil, errors.Wrap(err, "read block")
	}
	return block, nil
}
