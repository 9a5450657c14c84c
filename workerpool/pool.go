package workerpool

import (
	"sync"

	"github.com/fsoeltoni/vocal-remover/errors"
)

// Job is a unit of work submitted to a Pool. A non-nil return value is
// collected and surfaced by Wait.
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	m    sync.Mutex
	cond *sync.Cond
	wg   sync.WaitGroup

	queue   []Job
	errs    []error
	stopped bool
}

// New creates a pool with n workers. n must be at least 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.m)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Add enqueues jobs for execution and returns immediately.
func (p *Pool) Add(jobs []Job) {
	p.wg.Add(len(jobs))
	p.m.Lock()
	if p.stopped {
		p.m.Unlock()
		p.wg.Add(-len(jobs))
		return
	}
	p.queue = append(p.queue, jobs...)
	p.m.Unlock()
	p.cond.Broadcast()
}

// AddBlocking enqueues jobs for execution.
func (p *Pool) AddBlocking(jobs []Job) {
	p.Add(jobs)
}

// Stop abandons queued jobs; jobs already running finish.
func (p *Pool) Stop() {
	p.m.Lock()
	p.stopped = true
	p.wg.Add(-len(p.queue))
	p.queue = nil
	p.m.Unlock()
	p.cond.Broadcast()
}

// Wait blocks until every added job has completed or been abandoned, and
// returns the first job error observed, if any.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.m.Lock()
	defer p.m.Unlock()
	if len(p.errs) > 0 {
		return errors.Wrapf(p.errs[0], "%d job(s) failed", len(p.errs))
	}
	return nil
}

func (p *Pool) worker() {
	for {
		p.m.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.m.Unlock()
			return
		}
		j := p.queue[0]
		p.queue = p.queue[1:]
		p.m.Unlock()

		if err := j(); err != nil {
			p.m.Lock()
			p.errs = append(p.errs, err)
			p.m.Unlock()
		}
		p.wg.Done()
	}
}
