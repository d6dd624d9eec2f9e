package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// Pool runs a fixed number of workers against a shared queue, all
// guarded by one mutex so that claiming work and merging a worker's
// finished accumulator into the shared result never race. RunID
// stamps the run for log correlation across workers.
type Pool struct {
	RunID uuid.UUID
	Mu    sync.Mutex
}

// NewPool creates a Pool with a fresh RunID.
func NewPool() *Pool {
	return &Pool{RunID: uuid.New()}
}

// Run launches worker(0..threads-1) and waits for all of them to
// return. If threads <= 1 it runs worker(0) synchronously on the
// calling goroutine, matching the original single-thread fast path
// that skips std::thread entirely.
func (p *Pool) Run(threads int, worker func(workerIdx int)) {
	if threads <= 1 {
		worker(0)
		return
	}
	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func(idx int) {
			defer wg.Done()
			worker(idx)
		}(i)
	}
	wg.Wait()
}

// Merge runs f while holding p.Mu, the same mutex guarding every
// Queue built against this pool -- the one point besides work-claiming
// where workers touch shared state.
func (p *Pool) Merge(f func()) {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	f()
}
