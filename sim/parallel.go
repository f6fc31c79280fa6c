package sim

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum item count to fan out to the pool.
// Below this, single-threaded is faster due to channel overhead.
const parallelThreshold = 256

// span is a half-open index range assigned to one worker.
type span struct {
	start, end int
	worker     int
}

// workerPool runs data-parallel kernels over index ranges with persistent
// worker goroutines. A kernel must only write state owned by its own indices
// (or use atomics); the return from run is the barrier between phases — all
// writes of phase k are visible to all readers of phase k+1.
type workerPool struct {
	numWorkers int
	kernel     func(start, end, worker int)

	workChan chan span
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// start launches the persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan span, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing spans until stopped.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case s, ok := <-p.workChan:
			if !ok {
				return
			}
			p.kernel(s.start, s.end, s.worker)
			p.doneChan <- struct{}{}
		}
	}
}

// run executes kernel over [0, n) in contiguous chunks and returns once
// every chunk has completed. Small batches run inline on the caller.
func (p *workerPool) run(n int, kernel func(start, end, worker int)) {
	if n <= 0 {
		return
	}
	if n < parallelThreshold || p.numWorkers == 1 {
		kernel(0, n, 0)
		return
	}

	if !p.running {
		p.start()
	}

	// Workers read p.kernel only after receiving a span, which happens
	// after this write.
	p.kernel = kernel

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- span{start: start, end: end, worker: w}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
