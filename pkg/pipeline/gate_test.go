// pkg/pipeline/gate_test.go

package pipeline

import (
	"math/rand"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateOrdersPublication(t *testing.T) {
	const n = 64
	g := newGate()
	var mu sync.Mutex
	var order []uint64

	var wg sync.WaitGroup
	for _, seq := range rand.Perm(n) {
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			time.Sleep(time.Duration(rand.Intn(500)) * time.Microsecond)
			if !g.wait(seq) {
				return
			}
			mu.Lock()
			order = append(order, seq)
			mu.Unlock()
			g.pass()
		}(uint64(seq))
	}
	wg.Wait()

	assert.Len(t, order, n)
	for i, seq := range order {
		assert.Equal(t, uint64(i), seq)
	}
}

func TestGateAbortReleasesWaiters(t *testing.T) {
	g := newGate()
	results := make(chan bool, 4)
	for seq := uint64(1); seq <= 4; seq++ {
		go func(seq uint64) { results <- g.wait(seq) }(seq)
	}
	runtime.Gosched()
	g.abort()
	for i := 0; i < 4; i++ {
		select {
		case ok := <-results:
			assert.False(t, ok)
		case <-time.After(abortTimeout):
			t.Fatal("waiter not released by abort")
		}
	}
	assert.False(t, g.wait(0), "an aborted gate lets nobody through")
}

func TestConfigCheck(t *testing.T) {
	c := &Config{}
	c.Check()
	assert.Equal(t, DefaultBlockSize, c.BlockSize)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.Equal(t, c.Workers, c.QueueSize)

	c = &Config{BlockSize: 10, Workers: 3, QueueSize: 7}
	c.Check()
	assert.Equal(t, &Config{BlockSize: 10, Workers: 3, QueueSize: 7}, c)
}
