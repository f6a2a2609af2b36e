// pkg/archive/header.go

package archive

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic identifies a BlockPress archive.
const Magic = "DeKa"

const (
	// HeaderRegionSize is reserved at the start of every archive, whatever
	// the size of the block table.
	HeaderRegionSize = 1 << 20
	// fixedLen covers magic, block count and header size.
	fixedLen = 4 + 4 + 8
	// MaxBlocks is the largest block table that fits in the header region.
	MaxBlocks = (HeaderRegionSize - fixedLen) / 4
)

var (
	ErrBadMagic      = errors.New("not a BlockPress archive: bad magic")
	ErrTruncated     = errors.New("archive header is truncated")
	ErrCorrupt       = errors.New("archive header is corrupt")
	ErrTooManyBlocks = errors.Errorf("too many blocks for the archive header (max %d)", MaxBlocks)
)

// Header describes the layout of an archive: the header region comes first,
// then the blocks back to back in the order of BlockSizes.
type Header struct {
	HeaderSize uint64
	BlockSizes []uint32

	offsets []uint64 // prefix sums for Offset, built on first use
}

// Len returns the number of blocks.
func (h *Header) Len() int { return len(h.BlockSizes) }

// EncodedLen is the number of meaningful bytes at the start of the header
// region; the rest is padding.
func (h *Header) EncodedLen() uint64 {
	return fixedLen + 4*uint64(len(h.BlockSizes))
}

// DataSize is the sum of all block sizes.
func (h *Header) DataSize() uint64 {
	var total uint64
	for _, s := range h.BlockSizes {
		total += uint64(s)
	}
	return total
}

// Offset returns the absolute position of block i in the archive; Offset(Len())
// is the end of the last block. Not safe for concurrent first use.
func (h *Header) Offset(i int) uint64 {
	if len(h.offsets) != len(h.BlockSizes)+1 || h.offsets[0] != h.HeaderSize {
		h.offsets = make([]uint64, len(h.BlockSizes)+1)
		h.offsets[0] = h.HeaderSize
		for j, s := range h.BlockSizes {
			h.offsets[j+1] = h.offsets[j] + uint64(s)
		}
	}
	return h.offsets[i]
}

// Encode serializes the header region for the given block sizes, padded with
// zeros to HeaderRegionSize.
func Encode(blockSizes []uint32) ([]byte, error) {
	if len(blockSizes) > MaxBlocks {
		return nil, ErrTooManyBlocks
	}
	buf := make([]byte, HeaderRegionSize)
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(blockSizes)))
	binary.LittleEndian.PutUint64(buf[8:], HeaderRegionSize)
	p := buf[fixedLen:]
	for _, s := range blockSizes {
		binary.LittleEndian.PutUint32(p, s)
		p = p[4:]
	}
	return buf, nil
}

// Decode reads a header from r. It consumes exactly EncodedLen bytes on
// success; the padding up to HeaderSize is left to the caller.
func Decode(r io.Reader) (*Header, error) {
	var fixed [fixedLen]byte
	if err := readFull(r, fixed[:4]); err != nil {
		return nil, err
	}
	if !bytes.Equal(fixed[:4], []byte(Magic)) {
		return nil, ErrBadMagic
	}
	if err := readFull(r, fixed[4:]); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(fixed[4:])
	headerSize := binary.LittleEndian.Uint64(fixed[8:])
	if headerSize < fixedLen+4*uint64(count) {
		return nil, errors.Wrapf(ErrCorrupt, "%d blocks do not fit in a header of %d bytes", count, headerSize)
	}

	// grow the table while reading so a lying count on a short stream
	// fails before a huge allocation
	const batch = 4096
	sizes := make([]uint32, 0, min(int(count), batch))
	raw := make([]byte, 4*batch)
	for left := int(count); left > 0; {
		n := min(left, batch)
		if err := readFull(r, raw[:4*n]); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			sizes = append(sizes, binary.LittleEndian.Uint32(raw[4*i:]))
		}
		left -= n
	}
	return &Header{HeaderSize: headerSize, BlockSizes: sizes}, nil
}

func readFull(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return ErrTruncated
	default:
		return errors.Wrap(err, "read archive header")
	}
}
