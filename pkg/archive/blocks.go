// pkg/archive/blocks.go

package archive

import (
	"bytes"
	"io"

	"BlockPress/pkg/chunk"
	"BlockPress/pkg/utils"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("blockpress")

var ErrTruncatedBlock = errors.New("archive block is truncated")

// BlockReader yields the blocks of an archive using the sizes recorded in
// its header, without looking at the block contents.
type BlockReader struct {
	r      io.Reader
	header *Header
	next   int
}

var _ chunk.Iterator = (*BlockReader)(nil)

// NewBlockReader decodes the header of the archive in r and positions r at
// the first block.
func NewBlockReader(r io.Reader) (*BlockReader, error) {
	h, err := Decode(r)
	if err != nil {
		return nil, err
	}
	pad := int64(h.HeaderSize - h.EncodedLen())
	if pad < 0 {
		return nil, errors.Wrapf(ErrCorrupt, "header size %d", h.HeaderSize)
	}
	if err := skip(r, pad); err != nil {
		return nil, err
	}
	logger.Debugf("archive header: %d blocks, %d bytes of data", h.Len(), h.DataSize())
	return &BlockReader{r: r, header: h}, nil
}

func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err != nil {
			return errors.Wrap(err, "skip header padding")
		}
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF {
		return ErrTruncated
	}
	return errors.Wrap(err, "skip header padding")
}

func (b *BlockReader) Header() *Header { return b.header }

// blockPrealloc bounds the buffer reserved up front for a block; past it
// the buffer grows with the bytes actually read.
const blockPrealloc = 1 << 20

func (b *BlockReader) Next() ([]byte, error) {
	if b.next >= b.header.Len() {
		return nil, io.EOF
	}
	size := int64(b.header.BlockSizes[b.next])
	var buf bytes.Buffer
	buf.Grow(int(min(size, blockPrealloc)))
	n, err := io.CopyN(&buf, b.r, size)
	if err == io.EOF || (err == nil && n < size) {
		return nil, errors.Wrapf(ErrTruncatedBlock, "block %d of %d bytes, got %d", b.next, size, n)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read block %d", b.next)
	}
	b.next++
	return buf.Bytes(), nil
}
