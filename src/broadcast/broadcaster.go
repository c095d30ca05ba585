package broadcast

import (
	"fmt"
	"sync"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Filter tells the Broadcaster whether a queued item is still worth relaying.
// Signatures are kept while the transaction they sign is in the pool.
type Filter interface {
	TransactionInPool(id string) bool
}

// HeaderFunc returns the Peer header this node attaches to outgoing requests.
type HeaderFunc func() *peers.Peer

// Broadcaster queues and relays items to the peer set.
type Broadcaster struct {
	conf      Config
	trans     net.Transport
	registry  peers.Registry
	penalizer *peers.Penalizer
	filter    Filter
	header    HeaderFunc
	logger    *logrus.Entry

	l     sync.Mutex
	queue []*Job
	keys  map[uint64]struct{}

	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// NewBroadcaster ...
func NewBroadcaster(conf Config,
	trans net.Transport,
	registry peers.Registry,
	penalizer *peers.Penalizer,
	filter Filter,
	header HeaderFunc,
	logger *logrus.Entry,
) *Broadcaster {
	return &Broadcaster{
		conf:       conf,
		trans:      trans,
		registry:   registry,
		penalizer:  penalizer,
		filter:     filter,
		header:     header,
		logger:     logger.WithField("prefix", "broadcast"),
		keys:       make(map[uint64]struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Config returns the limits the Broadcaster was created with.
func (b *Broadcaster) Config() Config {
	return b.conf
}

// MaxRelays reports whether item has already been relayed RelayLimit times.
// When it has not, the relay counter of the item is incremented.
func (b *Broadcaster) MaxRelays(item chain.Relayable) bool {
	if item.RelayCount() >= b.conf.RelayLimit {
		b.logger.WithField("relays", item.RelayCount()).Debug("Broadcast relays exhausted")
		return true
	}
	item.IncRelays()
	return false
}

// Enqueue adds job to the release queue unless an identical job is already
// waiting. It reports whether the job was added. Immediate jobs are never
// queued: they are broadcast to up to PeerLimit peers before Enqueue returns.
func (b *Broadcaster) Enqueue(job *Job) bool {
	if job.Immediate {
		b.Broadcast(Params{Limit: b.conf.PeerLimit}, job)
		return false
	}

	b.l.Lock()
	defer b.l.Unlock()

	if _, ok := b.keys[job.key]; ok {
		return false
	}

	b.keys[job.key] = struct{}{}
	b.queue = append(b.queue, job)

	return true
}

// QueueLen returns the number of jobs waiting for the next release.
func (b *Broadcaster) QueueLen() int {
	b.l.Lock()
	defer b.l.Unlock()
	return len(b.queue)
}

func (b *Broadcaster) take() []*Job {
	b.l.Lock()
	defer b.l.Unlock()

	jobs := b.queue
	b.queue = nil
	b.keys = make(map[uint64]struct{})

	return jobs
}

// Run releases the queue every BroadcastInterval until Close is called.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(b.conf.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Release()
		case <-b.shutdownCh:
			return
		}
	}
}

// Close stops Run. Queued jobs are dropped.
func (b *Broadcaster) Close() {
	b.closeOnce.Do(func() {
		close(b.shutdownCh)
	})
}

// Release drains the queue, drops stale items, squashes what is left and
// broadcasts it.
func (b *Broadcaster) Release() {
	jobs := b.take()
	if len(jobs) == 0 {
		b.logger.Debug("Queue empty")
		return
	}

	jobs = b.filterQueue(jobs)
	batches := b.squashQueue(jobs)

	b.logger.WithFields(logrus.Fields{
		"jobs":    len(jobs),
		"batches": len(batches),
	}).Debug("Releasing queue")

	for _, batch := range batches {
		b.Broadcast(Params{Limit: b.conf.BroadcastLimit}, batch)
	}
}

func (b *Broadcaster) filterQueue(jobs []*Job) []*Job {
	if b.filter == nil {
		return jobs
	}

	res := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		switch d := j.Data.(type) {
		case *chain.Transaction:
			if !b.filter.TransactionInPool(d.ID) {
				continue
			}
		case *chain.Signature:
			if !b.filter.TransactionInPool(d.TransactionID) {
				continue
			}
		}
		res = append(res, j)
	}
	return res
}

// squashQueue merges single-item jobs into batches of at most ReleaseLimit
// items per api. Other jobs are passed through.
func (b *Broadcaster) squashQueue(jobs []*Job) []*Job {
	var (
		txs  []*chain.Transaction
		sigs []*chain.Signature
		rest []*Job
	)

	for _, j := range jobs {
		switch d := j.Data.(type) {
		case *chain.Transaction:
			txs = append(txs, d)
		case *chain.Signature:
			sigs = append(sigs, d)
		default:
			rest = append(rest, j)
		}
	}

	limit := b.conf.ReleaseLimit
	if limit <= 0 {
		limit = 1
	}

	var res []*Job
	for i := 0; i < len(txs); i += limit {
		end := i + limit
		if end > len(txs) {
			end = len(txs)
		}
		res = append(res, &Job{API: net.PostTransactions, Data: txs[i:end]})
	}
	for i := 0; i < len(sigs); i += limit {
		end := i + limit
		if end > len(sigs) {
			end = len(sigs)
		}
		res = append(res, &Job{API: net.PostSignatures, Data: sigs[i:end]})
	}

	return append(res, rest...)
}

// Broadcast sends job to the peers selected by params and waits for every
// send to complete. Peers that fail are penalized; delivery to the others
// continues. It returns the peers that were targeted.
func (b *Broadcaster) Broadcast(params Params, job *Job) []*peers.Peer {
	send, err := b.prepare(job)
	if err != nil {
		b.logger.WithError(err).WithField("api", job.API).Error("Preparing broadcast")
		return nil
	}

	targets := b.getPeers(params)
	if len(targets) > b.conf.BroadcastLimit {
		targets = targets[:b.conf.BroadcastLimit]
	}

	b.logger.WithFields(logrus.Fields{
		"api":   job.API,
		"peers": len(targets),
	}).Debug("Broadcasting")

	var g errgroup.Group
	if b.conf.ParallelLimit > 0 {
		g.SetLimit(b.conf.ParallelLimit)
	}

	for _, p := range targets {
		p := p
		g.Go(func() error {
			if err := send(p.String()); err != nil {
				b.logger.WithFields(logrus.Fields{
					"peer":  p.String(),
					"api":   job.API,
					"error": err,
				}).Debug("Broadcast failed")
				b.penalizer.RemovePeer(p, peers.ECOMMUNICATION, "Failed to broadcast "+job.API)
			}
			return nil
		})
	}

	g.Wait()

	return targets
}

func (b *Broadcaster) getPeers(params Params) []*peers.Peer {
	if len(params.Peers) > 0 {
		return params.Peers
	}

	limit := params.Limit
	if limit <= 0 {
		limit = b.conf.PeerLimit
	}

	return b.registry.List(peers.ListOptions{
		Limit:     limit,
		States:    []peers.State{peers.Connected},
		Broadhash: params.Broadhash,
	})
}

// prepare builds the request once and returns the function sending it to a
// single target.
func (b *Broadcaster) prepare(job *Job) (func(target string) error, error) {
	var header *peers.Peer
	if b.header != nil {
		header = b.header()
	}

	switch d := job.Data.(type) {
	case *chain.Transaction:
		return b.sendTransactions(header, []*chain.Transaction{d}), nil
	case []*chain.Transaction:
		return b.sendTransactions(header, d), nil
	case *chain.Signature:
		return b.sendSignatures(header, []*chain.Signature{d}), nil
	case []*chain.Signature:
		return b.sendSignatures(header, d), nil
	case *chain.Block:
		data, err := chain.EncodeBlock(d)
		if err != nil {
			return nil, err
		}
		args := &net.PostBlockRequest{Peer: header, Block: data}
		return func(target string) error {
			var out net.PostBlockResponse
			return b.trans.PostBlock(target, args, &out)
		}, nil
	default:
		return nil, fmt.Errorf("unexpected broadcast data %T", job.Data)
	}
}

func (b *Broadcaster) sendTransactions(header *peers.Peer, txs []*chain.Transaction) func(string) error {
	args := &net.PostTransactionsRequest{Peer: header, Transactions: txs}
	return func(target string) error {
		var out net.PostTransactionsResponse
		return b.trans.PostTransactions(target, args, &out)
	}
}

func (b *Broadcaster) sendSignatures(header *peers.Peer, sigs []*chain.Signature) func(string) error {
	args := &net.PostSignaturesRequest{Peer: header, Signatures: sigs}
	return func(target string) error {
		var out net.PostSignaturesResponse
		return b.trans.PostSignatures(target, args, &out)
	}
}
