// pkg/archive/blocks_test.go

package archive

import (
	"bytes"
	"io"
	"runtime"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, blocks ...string) []byte {
	t.Helper()
	sizes := make([]uint32, len(blocks))
	for i, b := range blocks {
		sizes[i] = uint32(len(b))
	}
	header, err := Encode(sizes)
	require.NoError(t, err)
	var buf bytes.Buffer
	buf.Write(header)
	for _, b := range blocks {
		buf.WriteString(b)
	}
	return buf.Bytes()
}

func readBlocks(t *testing.T, br *BlockReader) []string {
	t.Helper()
	var got []string
	for {
		b, err := br.Next()
		if err == io.EOF {
			return got
		}
		require.NoError(t, err)
		got = append(got, string(b))
	}
}

func TestBlockReader(t *testing.T) {
	blocks := []string{"alpha", "", "gamma-gamma", "d"}
	data := buildArchive(t, blocks...)

	// a seekable source skips the padding, a plain reader discards it
	for _, r := range []io.Reader{bytes.NewReader(data), iotest.HalfReader(bytes.NewReader(data))} {
		br, err := NewBlockReader(r)
		require.NoError(t, err)
		assert.Equal(t, len(blocks), br.Header().Len())
		assert.Equal(t, blocks, readBlocks(t, br))
	}
}

func TestBlockReaderNoBlocks(t *testing.T) {
	br, err := NewBlockReader(bytes.NewReader(buildArchive(t)))
	require.NoError(t, err)
	_, err = br.Next()
	assert.Equal(t, io.EOF, err)
}

func TestBlockReaderTruncatedBlock(t *testing.T) {
	data := buildArchive(t, "0123456789", "abcdef")
	br, err := NewBlockReader(bytes.NewReader(data[:len(data)-2]))
	require.NoError(t, err)

	b, err := br.Next()
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(b))

	_, err = br.Next()
	assert.ErrorIs(t, err, ErrTruncatedBlock)
}

func TestBlockReaderOversizedBlock(t *testing.T) {
	header, err := Encode([]uint32{0xFFFFFFF0})
	require.NoError(t, err)
	br, err := NewBlockReader(bytes.NewReader(append(header, "tiny"...)))
	require.NoError(t, err)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = br.Next()
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrTruncatedBlock)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

func TestBlockReaderTruncatedPadding(t *testing.T) {
	data := buildArchive(t, "x")
	_, err := NewBlockReader(iotest.HalfReader(bytes.NewReader(data[:1000])))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestBlockReaderBadMagic(t *testing.T) {
	_, err := NewBlockReader(bytes.NewReader([]byte("\x1f\x8b\x08\x00 not an archive")))
	assert.ErrorIs(t, err, ErrBadMagic)
}
