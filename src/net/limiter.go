package net

import "sync"

// connLimiter caps the number of concurrent inbound connections per IP.
type connLimiter struct {
	mu       sync.Mutex
	maxConns int
	counts   map[string]int
}

func newConnLimiter(maxConns int) *connLimiter {
	return &connLimiter{
		maxConns: maxConns,
		counts:   make(map[string]int),
	}
}

func (l *connLimiter) acquire(ip string) bool {
	if l.maxConns <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[ip] >= l.maxConns {
		return false
	}
	l.counts[ip]++
	return true
}

func (l *connLimiter) release(ip string) {
	if l.maxConns <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[ip] <= 1 {
		delete(l.counts, ip)
		return
	}
	l.counts[ip]--
}
