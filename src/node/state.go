package node

import (
	"sync"
	"sync/atomic"
)

// State captures the state of a node: Running or Shutdown.
type State uint32

const (
	// Running is the initial state of a node.
	Running State = iota
	// Shutdown is shutdown
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// WGLIMIT is the maximum number of goroutines that can be launched through
// state.goFunc
const WGLIMIT = 20

type state struct {
	state   State
	wg      sync.WaitGroup
	wgCount int32
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Start a goroutine and add it to waitgroup. Past WGLIMIT, f runs on the
// caller's goroutine.
func (b *state) goFunc(f func()) {
	b.wg.Add(1)
	if atomic.AddInt32(&b.wgCount, 1) > WGLIMIT {
		defer b.wg.Done()
		defer atomic.AddInt32(&b.wgCount, -1)
		f()
		return
	}
	go func() {
		defer b.wg.Done()
		defer atomic.AddInt32(&b.wgCount, -1)
		f()
	}()
}

func (b *state) waitRoutines() {
	b.wg.Wait()
}
