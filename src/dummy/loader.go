package dummy

import "sync/atomic"

// Loader records whether the chain is synchronizing.
type Loader struct {
	syncing int32
}

// NewLoader ...
func NewLoader() *Loader {
	return &Loader{}
}

// Syncing ...
func (l *Loader) Syncing() bool {
	return atomic.LoadInt32(&l.syncing) == 1
}

// SetSyncing ...
func (l *Loader) SetSyncing(syncing bool) {
	var v int32
	if syncing {
		v = 1
	}
	atomic.StoreInt32(&l.syncing, v)
}
