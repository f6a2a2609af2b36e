// pkg/gzmember/splitter_test.go

package gzmember

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMember builds a member of exactly size bytes: a valid header followed
// by filler that can never look like another header.
func fakeMember(size int, fill byte) []byte {
	m := make([]byte, size)
	copy(m, minimalHeader)
	for i := HeaderLen; i < size; i++ {
		m[i] = fill
	}
	return m
}

func drain(t *testing.T, s *Splitter) [][]byte {
	t.Helper()
	var members [][]byte
	for {
		m, err := s.Next()
		if err == io.EOF {
			return members
		}
		require.NoError(t, err)
		members = append(members, m)
	}
}

func TestSplitterMembers(t *testing.T) {
	members := [][]byte{fakeMember(120, 'a'), fakeMember(340, 'b'), fakeMember(58, 'c')}
	stream := bytes.Join(members, nil)

	for _, chunkSize := range []int{1, 3, 10, 11, 57, 58, 120, 340, 1024} {
		got := drain(t, NewReaderSplitter(bytes.NewReader(stream), chunkSize))
		require.Len(t, got, len(members), "chunk size %d", chunkSize)
		for i := range members {
			assert.Equal(t, members[i], got[i], "chunk size %d member %d", chunkSize, i)
		}
		assert.Equal(t, stream, bytes.Join(got, nil))
	}
}

func TestSplitterShortReads(t *testing.T) {
	members := [][]byte{fakeMember(30, 'x'), fakeMember(11, 'y'), fakeMember(10, 'z')}
	stream := bytes.Join(members, nil)
	got := drain(t, NewReaderSplitter(iotest.HalfReader(bytes.NewReader(stream)), 16))
	assert.Equal(t, members, got)
}

func TestSplitterRealGzip(t *testing.T) {
	var stream bytes.Buffer
	payloads := []string{"first member", "second, slightly longer member", ""}
	var sizes []int
	for _, p := range payloads {
		before := stream.Len()
		zw := gzip.NewWriter(&stream)
		_, err := zw.Write([]byte(p))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		sizes = append(sizes, stream.Len()-before)
	}

	got := drain(t, NewReaderSplitter(bytes.NewReader(stream.Bytes()), 7))
	require.Len(t, got, len(payloads))
	for i, m := range got {
		assert.Len(t, m, sizes[i])
		zr, err := gzip.NewReader(bytes.NewReader(m))
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, payloads[i], string(plain))
	}
}

func TestSplitterSingleMember(t *testing.T) {
	m := fakeMember(HeaderLen, 0)
	got := drain(t, NewReaderSplitter(bytes.NewReader(m), 4))
	assert.Equal(t, [][]byte{m}, got)
}

func TestSplitterEmptyStream(t *testing.T) {
	_, err := NewReaderSplitter(bytes.NewReader(nil), 8).Next()
	assert.ErrorIs(t, err, ErrEmptyStream)
}

func TestSplitterNotGzip(t *testing.T) {
	_, err := NewReaderSplitter(bytes.NewReader([]byte("plain text, definitely not gzip")), 8).Next()
	assert.ErrorIs(t, err, ErrNotGzip)

	_, err = NewReaderSplitter(bytes.NewReader([]byte{0x1f, 0x8b}), 8).Next()
	assert.ErrorIs(t, err, ErrNotGzip)
}

func TestSplitterReadError(t *testing.T) {
	r := io.MultiReader(bytes.NewReader(fakeMember(40, 'q')), iotest.ErrReader(io.ErrClosedPipe))
	s := NewReaderSplitter(r, 16)
	var err error
	for err == nil {
		_, err = s.Next()
	}
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
