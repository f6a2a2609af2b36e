// pkg/compress/compress.go

package compress

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"sync"

	"github.com/DataDog/zstd"
	"github.com/hungys/go-lz4"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Compressor turns one self-contained block into another. Implementations
// are safe for concurrent use.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

var ErrUnknownCodec = errors.New("unknown block codec")

// NewCompressor returns the codec named algr, or nil if it is not supported.
func NewCompressor(algr string) Compressor {
	switch strings.ToLower(algr) {
	case "", "gzip", "gz":
		return NewGzip(gzip.DefaultCompression)
	case "zstd":
		return ZStandard{level: zstd.DefaultCompression}
	case "lz4":
		return LZ4{}
	}
	return nil
}

// Sniff picks the codec that produced block by its leading magic bytes.
func Sniff(block []byte) (Compressor, error) {
	switch {
	case bytes.HasPrefix(block, gzipMagic):
		return defaultGzip, nil
	case bytes.HasPrefix(block, zstdMagic):
		return ZStandard{level: zstd.DefaultCompression}, nil
	case bytes.HasPrefix(block, lz4Magic):
		return LZ4{}, nil
	}
	return nil, ErrUnknownCodec
}

// Auto decompresses any block Sniff recognizes. It cannot compress.
type Auto struct{}

func (Auto) Name() string { return "auto" }

func (Auto) Compress(src []byte) ([]byte, error) {
	return nil, errors.New("auto codec only decompresses")
}

func (Auto) Decompress(src []byte) ([]byte, error) {
	c, err := Sniff(src)
	if err != nil {
		return nil, err
	}
	return c.Decompress(src)
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte("BPL4")
)

var defaultGzip = NewGzip(gzip.DefaultCompression)

// Gzip writes every block as one complete gzip member, so the output of
// several blocks concatenated is a valid multi-member gzip file.
type Gzip struct {
	level   int
	writers sync.Pool
}

func NewGzip(level int) *Gzip {
	g := &Gzip{level: level}
	g.writers.New = func() interface{} {
		w, err := gzip.NewWriterLevel(nil, level)
		if err != nil {
			panic(err)
		}
		return w
	}
	return g
}

func (g *Gzip) Name() string { return "gzip" }

func (g *Gzip) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(src)/2 + 64)
	w := g.writers.Get().(*gzip.Writer)
	defer g.writers.Put(w)
	w.Reset(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	return buf.Bytes(), nil
}

func (g *Gzip) Decompress(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "gunzip")
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "gunzip")
	}
	return out, nil
}

// ZStandard stores a block as one zstd frame.
type ZStandard struct {
	level int
}

func (n ZStandard) Name() string { return "zstd" }

func (n ZStandard) Compress(src []byte) ([]byte, error) {
	d, err := zstd.CompressLevel(nil, src, n.level)
	return d, errors.Wrap(err, "zstd")
}

func (n ZStandard) Decompress(src []byte) ([]byte, error) {
	d, err := zstd.Decompress(nil, src)
	return d, errors.Wrap(err, "unzstd")
}

// LZ4 raw blocks carry no size, so they are framed as
// "BPL4" | u32 LE decompressed length | lz4 block.
type LZ4 struct{}

const lz4FrameLen = 8

// an lz4 block never expands by more than this ratio
const lz4MaxExpansion = 255

func (l LZ4) Name() string { return "lz4" }

func (l LZ4) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4FrameLen+lz4.CompressBound(len(src)))
	copy(dst, lz4Magic)
	binary.LittleEndian.PutUint32(dst[4:], uint32(len(src)))
	if len(src) == 0 {
		return dst[:lz4FrameLen], nil
	}
	n, err := lz4.CompressDefault(src, dst[lz4FrameLen:])
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	return dst[:lz4FrameLen+n], nil
}

func (l LZ4) Decompress(src []byte) ([]byte, error) {
	if len(src) < lz4FrameLen || !bytes.HasPrefix(src, lz4Magic) {
		return nil, errors.New("lz4: bad block frame")
	}
	size := binary.LittleEndian.Uint32(src[4:])
	if uint64(size) > lz4MaxExpansion*uint64(len(src)-lz4FrameLen)+lz4FrameLen {
		return nil, errors.Errorf("unlz4: %d compressed bytes cannot hold %d bytes", len(src)-lz4FrameLen, size)
	}
	dst := make([]byte, size)
	if size == 0 {
		return dst, nil
	}
	n, err := lz4.DecompressSafe(src[lz4FrameLen:], dst)
	if err != nil {
		return nil, errors.Wrap(err, "unlz4")
	}
	if n != int(size) {
		return nil, errors.Errorf("unlz4: got %d bytes, expect %d", n, size)
	}
	return dst, nil
}
