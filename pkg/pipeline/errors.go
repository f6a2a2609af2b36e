// pkg/pipeline/errors.go

package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownFormat = errors.New("input is neither a BlockPress archive nor a gzip stream")
	ErrNotSeekable   = errors.New("output must be seekable to write the archive header")
	ErrBlockTooLarge = errors.New("processed block does not fit in the archive block table")
)

// BlockError is a codec failure on a single block. It aborts the whole run.
type BlockError struct {
	Seq uint64
	Err error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Seq, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
