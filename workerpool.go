package ulasan

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Job is a unit of work run by a Pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	queue   chan Job
	quit    chan struct{}
	stop    sync.Once
	pending sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewPool starts a pool with n workers. n < 1 uses one worker per CPU.
func NewPool(n int) *Pool {
	if n < 1 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		queue: make(chan Job),
		quit:  make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

// Add queues jobs without blocking the caller.
func (p *Pool) Add(jobs []Job) {
	p.pending.Add(len(jobs))
	go func() {
		for i, job := range jobs {
			select {
			case p.queue <- job:
			case <-p.quit:
				p.pending.Add(-(len(jobs) - i))
				return
			}
		}
	}()
}

// Wait blocks until every queued job has finished and returns the first
// error any job reported.
func (p *Pool) Wait() error {
	p.pending.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.errs) == 0 {
		return nil
	}
	return errors.Wrapf(p.errs[0], "%d job(s) failed", len(p.errs))
}

// Stop releases the workers. Jobs not yet started are discarded.
func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
}

func (p *Pool) work() {
	for {
		select {
		case job := <-p.queue:
			p.run(job)
		case <-p.quit:
			return
		}
	}
}

func (p *Pool) run(job Job) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.record(errors.Errorf("job panicked: %v", r))
		}
	}()
	if err := job(); err != nil {
		p.record(err)
	}
}

func (p *Pool) record(err error) {
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}
