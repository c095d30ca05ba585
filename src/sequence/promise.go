package sequence

// Result is what a Task produced.
type Result struct {
	Value interface{}
	Err   error
}

// Promise is handed back by Sequence.Add and resolved once the task has run.
type Promise struct {
	respCh chan Result
}

func newPromise() *Promise {
	return &Promise{
		// buffered so the worker never blocks on a caller that stopped waiting
		respCh: make(chan Result, 1),
	}
}

// Respond resolves the promise.
func (p *Promise) Respond(value interface{}, err error) {
	p.respCh <- Result{Value: value, Err: err}
}

// Wait blocks until the task has run and returns its outcome.
func (p *Promise) Wait() (interface{}, error) {
	res := <-p.respCh
	return res.Value, res.Err
}

// Done returns a channel that receives the outcome once.
func (p *Promise) Done() <-chan Result {
	return p.respCh
}
