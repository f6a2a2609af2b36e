// pkg/pipeline/gate.go

package pipeline

import "sync"

// gate lets results through strictly in sequence order. A worker holding
// sequence k waits until every result before k went through.
type gate struct {
	sync.Mutex
	cond    *sync.Cond
	next    uint64
	aborted bool
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(g)
	return g
}

// wait blocks until seq is the next one to pass. It returns false if the
// gate was aborted meanwhile.
func (g *gate) wait(seq uint64) bool {
	g.Lock()
	defer g.Unlock()
	for g.next != seq && !g.aborted {
		g.cond.Wait()
	}
	return !g.aborted
}

// pass lets the following sequence number through.
func (g *gate) pass() {
	g.Lock()
	g.next++
	g.Unlock()
	g.cond.Broadcast()
}

func (g *gate) abort() {
	g.Lock()
	g.aborted = true
	g.Unlock()
	g.cond.Broadcast()
}
