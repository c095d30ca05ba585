package sequence

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrSequenceClosed is returned for tasks added after, or pending at, Close.
var ErrSequenceClosed = errors.New("sequence closed")

// Task is a unit of work executed by a Sequence.
type Task func() (interface{}, error)

type job struct {
	task    Task
	promise *Promise
}

// Sequence runs tasks one at a time in FIFO order.
type Sequence struct {
	name         string
	warningLimit int
	logger       *logrus.Entry

	l      sync.Mutex
	queue  []*job
	closed bool

	notifyCh   chan struct{}
	shutdownCh chan struct{}
	doneCh     chan struct{}
}

// NewSequence creates a Sequence. A warning is logged whenever more than
// warningLimit tasks are pending; 0 disables the warning. Call Run to start
// the worker.
func NewSequence(name string, warningLimit int, logger *logrus.Entry) *Sequence {
	return &Sequence{
		name:         name,
		warningLimit: warningLimit,
		logger:       logger.WithField("sequence", name),
		notifyCh:     make(chan struct{}, 1),
		shutdownCh:   make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Add queues a task and returns a Promise for its outcome. The task runs after
// every task added before it has finished, successfully or not.
func (s *Sequence) Add(task Task) *Promise {
	p := newPromise()

	s.l.Lock()
	if s.closed {
		s.l.Unlock()
		p.Respond(nil, ErrSequenceClosed)
		return p
	}
	s.queue = append(s.queue, &job{task: task, promise: p})
	pending := len(s.queue)
	s.l.Unlock()

	if s.warningLimit > 0 && pending > s.warningLimit {
		s.logger.WithField("pending", pending).Warn("Sequence queue above warning limit")
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}

	return p
}

// Count returns the number of tasks waiting to run.
func (s *Sequence) Count() int {
	s.l.Lock()
	defer s.l.Unlock()
	return len(s.queue)
}

// Run executes queued tasks until Close is called.
func (s *Sequence) Run() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.shutdownCh:
			s.drain()
			return
		default:
		}

		j := s.pop()
		if j == nil {
			select {
			case <-s.notifyCh:
			case <-s.shutdownCh:
				s.drain()
				return
			}
			continue
		}

		value, err := s.execute(j.task)
		j.promise.Respond(value, err)
	}
}

// Close stops the worker after the running task, if any, and fails every task
// still pending with ErrSequenceClosed.
func (s *Sequence) Close() {
	s.l.Lock()
	if s.closed {
		s.l.Unlock()
		return
	}
	s.closed = true
	s.l.Unlock()

	close(s.shutdownCh)
}

// Wait blocks until Run has returned.
func (s *Sequence) Wait() {
	<-s.doneCh
}

func (s *Sequence) pop() *job {
	s.l.Lock()
	defer s.l.Unlock()

	if len(s.queue) == 0 {
		return nil
	}

	j := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return j
}

func (s *Sequence) drain() {
	s.l.Lock()
	pending := s.queue
	s.queue = nil
	s.l.Unlock()

	for _, j := range pending {
		j.promise.Respond(nil, ErrSequenceClosed)
	}
}

// execute runs a task, turning a panic into an error so the lane is always
// released.
func (s *Sequence) execute(task Task) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Sequence task panicked")
			value = nil
			err = fmt.Errorf("sequence task panicked: %v", r)
		}
	}()

	return task()
}
