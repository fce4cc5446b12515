// Package parallel shades canvas rows on a fixed set of worker goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs row bands on worker goroutines. Each worker has its own queue
// and steals from the others when it runs dry, so a slow band does not
// hold back the rest.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool. workers <= 0 means GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		default:
			if fn := p.steal(id); fn != nil {
				fn()
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case fn := <-own:
				fn()
			}
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Rows splits [0, h) into bands and calls fn(y0, y1) for each band on the
// workers, returning when all bands are done. After Close, or when the
// pool has a single worker, fn runs on the caller's goroutine.
func (p *Pool) Rows(h int, fn func(y0, y1 int)) {
	if h <= 0 {
		return
	}
	if p.workers == 1 || !p.running.Load() {
		fn(0, h)
		return
	}

	bands := Bands(h, p.workers*2)
	var wg sync.WaitGroup
	wg.Add(len(bands))
	for i, b := range bands {
		job := func() {
			defer wg.Done()
			fn(b[0], b[1])
		}
		select {
		case p.queues[i%p.workers] <- job:
		case <-p.done:
			job()
		}
	}
	wg.Wait()
}

// Close stops the workers. Pending Rows calls must have returned. It is
// idempotent.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Bands splits [0, h) into at most n contiguous half-open ranges of
// nearly equal size.
func Bands(h, n int) [][2]int {
	if h <= 0 {
		return nil
	}
	n = min(max(n, 1), h)
	out := make([][2]int, 0, n)
	for i := range n {
		out = append(out, [2]int{h * i / n, h * (i + 1) / n})
	}
	return out
}
