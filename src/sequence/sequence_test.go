package sequence

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mosaicnetworks/courier/src/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequence(t *testing.T) *Sequence {
	s := NewSequence("balances", 0, common.NewTestEntry(t, common.TestLogLevel))
	go s.Run()
	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})
	return s
}

func TestSequenceFIFO(t *testing.T) {
	s := newTestSequence(t)

	var l sync.Mutex
	order := []int{}

	promises := []*Promise{}
	for i := 0; i < 50; i++ {
		i := i
		promises = append(promises, s.Add(func() (interface{}, error) {
			l.Lock()
			order = append(order, i)
			l.Unlock()
			return i, nil
		}))
	}

	for i, p := range promises {
		v, err := p.Wait()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	for i := range order {
		assert.Equal(t, i, order[i])
	}
}

func TestSequenceNoOverlap(t *testing.T) {
	s := newTestSequence(t)

	var running int32
	var overlaps int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := s.Add(func() (interface{}, error) {
				if atomic.AddInt32(&running, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil, nil
			})
			p.Wait()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), overlaps)
}

func TestSequenceFailureReleasesLane(t *testing.T) {
	s := newTestSequence(t)

	boom := errors.New("boom")
	p1 := s.Add(func() (interface{}, error) { return nil, boom })
	p2 := s.Add(func() (interface{}, error) { panic("worse") })
	p3 := s.Add(func() (interface{}, error) { return "ok", nil })

	_, err := p1.Wait()
	assert.Equal(t, boom, err)

	_, err = p2.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worse")

	v, err := p3.Wait()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

// Two spends against the same balance: the second must observe the first.
func TestSequenceBalanceSerialization(t *testing.T) {
	s := newTestSequence(t)

	balance := 100
	spend := func(amount int) Task {
		return func() (interface{}, error) {
			current := balance
			time.Sleep(2 * time.Millisecond)
			if current < amount {
				return nil, errors.New("insufficient balance")
			}
			balance = current - amount
			return balance, nil
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Add(spend(70)).Wait()
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 30, balance)
}

func TestSequenceClose(t *testing.T) {
	s := NewSequence("closing", 0, common.NewTestEntry(t, common.TestLogLevel))
	go s.Run()

	block := make(chan struct{})
	p1 := s.Add(func() (interface{}, error) {
		<-block
		return 1, nil
	})
	p2 := s.Add(func() (interface{}, error) { return 2, nil })

	// let the first task start
	time.Sleep(10 * time.Millisecond)
	s.Close()
	close(block)

	v, err := p1.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = p2.Wait()
	assert.Equal(t, ErrSequenceClosed, err)

	s.Wait()

	_, err = s.Add(func() (interface{}, error) { return nil, nil }).Wait()
	assert.Equal(t, ErrSequenceClosed, err)
}

func TestSequenceCount(t *testing.T) {
	s := NewSequence("count", 1, common.NewTestEntry(t, common.TestLogLevel))

	s.Add(func() (interface{}, error) { return nil, nil })
	s.Add(func() (interface{}, error) { return nil, nil })
	assert.Equal(t, 2, s.Count())

	go s.Run()
	p := s.Add(func() (interface{}, error) { return nil, nil })
	p.Wait()
	assert.Equal(t, 0, s.Count())

	s.Close()
	s.Wait()
}
