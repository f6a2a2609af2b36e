// pkg/pipeline/engine.go

package pipeline

import (
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"BlockPress/pkg/archive"
	"BlockPress/pkg/chunk"
	"BlockPress/pkg/queue"
	"BlockPress/pkg/utils"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var logger = utils.GetLogger("blockpress")

// BlockFunc transforms one block. It is called from several goroutines at
// once and must not keep or modify its input.
type BlockFunc func(block []byte) ([]byte, error)

// Strategy tells the engine how to cut the input and what to do with each
// piece.
type Strategy struct {
	Name      string
	Split     func(r io.Reader) (chunk.Iterator, error)
	Transform BlockFunc
	// Header reserves the archive header region at the start of the output
	// and fills it with the block table once all blocks are written.
	Header bool
}

type Stats struct {
	Blocks   uint64
	BytesIn  uint64
	BytesOut uint64
	Elapsed  time.Duration
}

// Engine runs a Strategy over a stream with a fixed pool of workers. Blocks
// are processed in parallel but always written in input order.
type Engine struct {
	conf     *Config
	strategy Strategy
	stats    Stats
}

func New(conf *Config, s Strategy) *Engine {
	conf.Check()
	return &Engine{conf: conf, strategy: s}
}

// Stats of the last Process call.
func (e *Engine) Stats() Stats { return e.stats }

// Process reads in until the end, writes the result to out and returns once
// every goroutine it started has exited. On error out holds a partial
// result that the caller should discard. When the strategy writes a header,
// out must be an io.WriteSeeker positioned at its start.
func (e *Engine) Process(in io.Reader, out io.Writer) error {
	start := time.Now()
	if e.strategy.Header {
		if _, ok := out.(io.WriteSeeker); !ok {
			return ErrNotSeekable
		}
	}
	it, err := e.strategy.Split(in)
	if err != nil {
		return err
	}

	logger.Infof("%s: start with %d workers", e.strategy.Name, e.conf.Workers)
	r := &run{
		transform: e.strategy.Transform,
		work:      queue.New[chunk.Chunk](e.conf.QueueSize),
		results:   queue.New[chunk.Processed](e.conf.QueueSize),
		gate:      newGate(),
	}

	var workers errgroup.Group
	for i := 0; i < e.conf.Workers; i++ {
		workers.Go(r.worker)
	}
	written := make(chan struct{})
	go func() {
		defer close(written)
		r.write(out, e.strategy.Header)
	}()

	r.dispatch(it)
	r.work.Complete()
	if err := workers.Wait(); err != nil {
		r.fail(err)
	}
	r.results.Complete()
	<-written

	e.stats = Stats{
		Blocks:   r.blocks.Load(),
		BytesIn:  r.bytesIn.Load(),
		BytesOut: r.bytesOut.Load(),
		Elapsed:  time.Since(start),
	}
	if r.err != nil {
		logger.Errorf("%s: aborted after %d blocks: %s", e.strategy.Name, e.stats.Blocks, r.err)
		return r.err
	}
	logger.Infof("%s: %d blocks, %d -> %d bytes in %s", e.strategy.Name,
		e.stats.Blocks, e.stats.BytesIn, e.stats.BytesOut, e.stats.Elapsed)
	return nil
}

// run is the state shared by the goroutines of one Process call.
type run struct {
	transform BlockFunc
	work      *queue.Queue[chunk.Chunk]
	results   *queue.Queue[chunk.Processed]
	gate      *gate

	once    sync.Once
	err     error // first failure, read only after all goroutines exited
	aborted atomic.Bool

	blocks   atomic.Uint64
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
}

// fail records the first error and releases everybody blocked on a queue or
// on the gate.
func (r *run) fail(err error) {
	r.once.Do(func() {
		r.err = err
		r.aborted.Store(true)
		r.work.Complete()
		r.results.Complete()
		r.gate.abort()
	})
}

func (r *run) dispatch(it chunk.Iterator) {
	var seq uint64
	for !r.aborted.Load() {
		data, err := it.Next()
		if err == io.EOF {
			logger.Debugf("all %d blocks enqueued", seq)
			return
		}
		if err != nil {
			r.fail(err)
			return
		}
		if !r.work.Enqueue(chunk.Chunk{Seq: seq, Data: data}) {
			return
		}
		logger.Debugf("enqueued block %d of %d bytes", seq, len(data))
		r.bytesIn.Add(uint64(len(data)))
		seq++
	}
}

func (r *run) worker() error {
	for {
		c, ok := r.work.Dequeue()
		if !ok || r.aborted.Load() {
			return nil
		}
		data, err := r.apply(c.Data)
		if err != nil {
			err = &BlockError{Seq: c.Seq, Err: err}
			r.fail(err)
			return err
		}
		if !r.gate.wait(c.Seq) {
			return nil
		}
		ok = r.results.Enqueue(chunk.Processed{Seq: c.Seq, Data: data})
		r.gate.pass()
		if !ok {
			return nil
		}
		logger.Debugf("published block %d (%d -> %d bytes)", c.Seq, len(c.Data), len(data))
	}
}

func (r *run) apply(block []byte) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %v", p)
		}
	}()
	return r.transform(block)
}

func (r *run) write(out io.Writer, header bool) {
	var sizes []uint32
	if header {
		if _, err := out.(io.Seeker).Seek(archive.HeaderRegionSize, io.SeekStart); err != nil {
			r.fail(errors.Wrap(err, "reserve archive header"))
			return
		}
	}
	for {
		p, ok := r.results.Dequeue()
		if !ok || r.aborted.Load() {
			break
		}
		if header {
			if uint64(len(p.Data)) > math.MaxUint32 {
				r.fail(errors.Wrapf(ErrBlockTooLarge, "block %d has %d bytes", p.Seq, len(p.Data)))
				return
			}
			if len(sizes) == archive.MaxBlocks {
				r.fail(archive.ErrTooManyBlocks)
				return
			}
			sizes = append(sizes, uint32(len(p.Data)))
		}
		if _, err := out.Write(p.Data); err != nil {
			r.fail(errors.Wrapf(err, "write block %d", p.Seq))
			return
		}
		r.blocks.Add(1)
		r.bytesOut.Add(uint64(len(p.Data)))
	}
	if !header || r.aborted.Load() {
		return
	}

	buf, err := archive.Encode(sizes)
	if err != nil {
		r.fail(err)
		return
	}
	ws := out.(io.WriteSeeker)
	if _, err = ws.Seek(0, io.SeekStart); err == nil {
		if _, err = ws.Write(buf); err == nil {
			_, err = ws.Seek(0, io.SeekEnd)
		}
	}
	if err != nil {
		r.fail(errors.Wrap(err, "write archive header"))
		return
	}
	r.bytesOut.Add(uint64(len(buf)))
	logger.Debugf("archive header written for %d blocks", len(sizes))
}
