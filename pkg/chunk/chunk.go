// pkg/chunk/chunk.go

package chunk

import (
	"BlockPress/pkg/utils"
)

var logger = utils.GetLogger("blockpress")

// Chunk is one ordered unit of input handed to a worker.
type Chunk struct {
	Seq  uint64
	Data []byte
}

// Processed is the codec output of a Chunk. Seq is carried over unchanged
// and is the only thing that ties the result back to its input position.
type Processed struct {
	Seq  uint64
	Data []byte
}

// Iterator yields the payloads of successive chunks in stream order.
// Next returns io.EOF once the stream is exhausted; any other error is fatal.
// The returned slice is owned by the caller.
type Iterator interface {
	Next() ([]byte, error)
}
