// cmd/main_test.go

package main

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"BlockPress/pkg/archive"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T, dir string, size int) (string, []byte) {
	data := make([]byte, size)
	rnd := rand.New(rand.NewSource(7))
	for i := range data {
		data[i] = byte('a' + rnd.Intn(6))
	}
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path, data
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	for _, algr := range []string{"gzip", "zstd", "lz4"} {
		t.Run(algr, func(t *testing.T) {
			dir := t.TempDir()
			in, data := sample(t, dir, 150<<10)
			arc := filepath.Join(dir, "input.dk")
			back := filepath.Join(dir, "output.txt")

			require.NoError(t, Main([]string{"blockpress", "--no-progress", "compress",
				"--block-size", "16", "--threads", "3", "--compress", algr, in, arc}))
			require.NoError(t, Main([]string{"blockpress", "--no-progress", "info", "--blocks", arc}))
			require.NoError(t, Main([]string{"blockpress", "--no-progress", "decompress", arc, back}))

			got, err := os.ReadFile(back)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got))

			f, err := os.Open(arc)
			require.NoError(t, err)
			defer f.Close()
			h, err := archive.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, 10, h.Len())
		})
	}
}

func TestRawGzipIsReadableByGzip(t *testing.T) {
	dir := t.TempDir()
	in, data := sample(t, dir, 70<<10)
	out := filepath.Join(dir, "input.txt.gz")
	require.NoError(t, Main([]string{"blockpress", "-q", "compress", "--raw", "--block-size", "8", in, out}))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))

	back := filepath.Join(dir, "back.txt")
	require.NoError(t, Main([]string{"blockpress", "-q", "decompress", "--read-size", "4", out, back}))
	got, err = os.ReadFile(back)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestRawRequiresGzip(t *testing.T) {
	dir := t.TempDir()
	in, _ := sample(t, dir, 1024)
	err := Main([]string{"blockpress", "-q", "compress", "--raw", "--compress", "zstd", in, filepath.Join(dir, "x")})
	assert.Error(t, err)
}

func TestUnknownCodec(t *testing.T) {
	dir := t.TempDir()
	in, _ := sample(t, dir, 1024)
	err := Main([]string{"blockpress", "-q", "compress", "--compress", "brotli", in, filepath.Join(dir, "x")})
	assert.Error(t, err)
}

func TestExistingOutputNeedsForce(t *testing.T) {
	dir := t.TempDir()
	in, _ := sample(t, dir, 4096)
	arc := filepath.Join(dir, "input.dk")
	require.NoError(t, os.WriteFile(arc, []byte("keep me"), 0644))

	err := Main([]string{"blockpress", "-q", "compress", in, arc})
	require.Error(t, err)
	kept, err := os.ReadFile(arc)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(kept))

	require.NoError(t, Main([]string{"blockpress", "-q", "compress", "--force", in, arc}))
	f, err := os.Open(arc)
	require.NoError(t, err)
	defer f.Close()
	_, err = archive.Decode(f)
	assert.NoError(t, err)
}

func TestFailedRunLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in, _ := sample(t, dir, 4096)
	out := filepath.Join(dir, "output.txt")

	err := Main([]string{"blockpress", "-q", "decompress", in, out})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMissingArguments(t *testing.T) {
	assert.Error(t, Main([]string{"blockpress", "-q", "compress", "only-one"}))
	assert.Error(t, Main([]string{"blockpress", "-q", "info"}))
}

func TestInputReleaseKeepsStdin(t *testing.T) {
	in, size, release, err := openInput("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, in)
	assert.Zero(t, size)
	release()
	_, err = os.Stdin.Stat()
	assert.NoError(t, err)

	path, data := sample(t, t.TempDir(), 100)
	in, size, release, err = openInput(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	release()
	_, err = in.Stat()
	assert.Error(t, err)
}
