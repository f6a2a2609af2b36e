// pkg/pipeline/strategy.go

package pipeline

import (
	"bufio"
	"bytes"
	"io"

	"BlockPress/pkg/archive"
	"BlockPress/pkg/chunk"
	"BlockPress/pkg/compress"
	"BlockPress/pkg/gzmember"

	"github.com/pkg/errors"
)

// Compress cuts the input into conf.BlockSize blocks, compresses each with
// codec and writes a BlockPress archive.
func Compress(conf *Config, codec compress.Compressor) Strategy {
	conf.Check()
	return Strategy{
		Name: "compress(" + codec.Name() + ")",
		Split: func(r io.Reader) (chunk.Iterator, error) {
			return chunk.NewFixedSplitter(r, conf.BlockSize), nil
		},
		Transform: codec.Compress,
		Header:    true,
	}
}

// CompressRaw writes every block as a gzip member with no archive header.
// The output is an ordinary multi-member gzip file and does not need a
// seekable destination.
func CompressRaw(conf *Config) Strategy {
	conf.Check()
	codec := compress.NewCompressor("gzip")
	return Strategy{
		Name: "compress(raw gzip)",
		Split: func(r io.Reader) (chunk.Iterator, error) {
			return chunk.NewFixedSplitter(r, conf.BlockSize), nil
		},
		Transform: codec.Compress,
	}
}

// Decompress restores the original data. A BlockPress archive is split by
// its block table; any other gzip stream is split by scanning for member
// headers, conf.BlockSize bytes at a time.
func Decompress(conf *Config) Strategy {
	conf.Check()
	return Strategy{
		Name: "decompress",
		Split: func(r io.Reader) (chunk.Iterator, error) {
			br := bufio.NewReaderSize(r, 64<<10)
			head, err := br.Peek(gzmember.HeaderLen)
			if err != nil && err != io.EOF {
				return nil, errors.Wrap(err, "read input")
			}
			switch {
			case bytes.HasPrefix(head, []byte(archive.Magic)):
				logger.Infof("input is a BlockPress archive")
				return archive.NewBlockReader(br)
			case len(head) == 0:
				return nil, gzmember.ErrEmptyStream
			case gzmember.IsHeaderAt(head, 0):
				logger.Infof("no archive header, looking for gzip members")
				return gzmember.NewReaderSplitter(br, conf.BlockSize), nil
			}
			return nil, ErrUnknownFormat
		},
		Transform: compress.Auto{}.Decompress,
	}
}
