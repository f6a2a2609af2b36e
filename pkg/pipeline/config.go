// pkg/pipeline/config.go

package pipeline

import "runtime"

const DefaultBlockSize = 1 << 20

// Config for the engine.
type Config struct {
	BlockSize int // bytes per block when splitting plain input
	Workers   int // number of codec goroutines
	QueueSize int // capacity of the work and result queues, Workers if 0
}

// Check fills in defaults for unset fields.
func (c *Config) Check() {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.QueueSize <= 0 {
		c.QueueSize = c.Workers
	}
}
