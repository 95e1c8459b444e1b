// Package parallel runs per-row shading work on a fixed set of goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines. Each worker owns a queue and
// steals from its neighbours when that queue runs dry, so bands that take
// longer to shade do not leave other workers idle.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// mu is held shared while Do enqueues and exclusively while Close
	// stops the workers, so no job lands in a queue nobody drains.
	mu sync.RWMutex
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	depth := max(workers*4, 8)
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}
	return p
}

func (p *Pool) loop(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
			continue
		default:
		}

		if job := p.steal(id); job != nil {
			job()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case job := <-p.queues[(id+i)%p.workers]:
			return job
		default:
		}
	}
	return nil
}

// Do runs every job and waits for them to finish. Jobs not yet handed to a
// worker when ctx is cancelled are skipped and Do returns ctx.Err(). On a
// closed pool the jobs run on the calling goroutine. Do may race with
// Close; jobs are then either queued before the workers stop or run
// inline, never dropped.
func (p *Pool) Do(ctx context.Context, jobs []func()) error {
	if len(jobs) == 0 {
		return ctx.Err()
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return inline(ctx, jobs)
	}

	var wg sync.WaitGroup
	var err error
submit:
	for i, job := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		run := func() {
			defer wg.Done()
			job()
		}
		select {
		case p.queues[i%p.workers] <- run:
		case <-ctx.Done():
			wg.Done()
			err = ctx.Err()
			break submit
		}
	}
	p.mu.RUnlock()

	wg.Wait()
	return err
}

func inline(ctx context.Context, jobs []func()) error {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		job()
	}
	return nil
}

// Rows splits [0, rows) into bands and calls fn for each band on the pool.
// Every row is covered by exactly one band.
func (p *Pool) Rows(ctx context.Context, rows int, fn func(Band)) error {
	bands := Bands(rows, p.workers*4)
	jobs := make([]func(), len(bands))
	for i, b := range bands {
		jobs[i] = func() { fn(b) }
	}
	return p.Do(ctx, jobs)
}

// Close stops the workers after the queued jobs finish. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Running reports whether the pool still accepts work.
func (p *Pool) Running() bool { return p.running.Load() }

// Band is the half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Height returns the number of rows in the band.
func (b Band) Height() int { return b.Y1 - b.Y0 }

// Bands divides rows into at most parts contiguous bands whose heights
// differ by at most one.
func Bands(rows, parts int) []Band {
	if rows <= 0 {
		return nil
	}
	parts = min(max(parts, 1), rows)

	bands := make([]Band, parts)
	base, extra := rows/parts, rows%parts
	y := 0
	for i := range bands {
		h := base
		if i < extra {
			h++
		}
		bands[i] = Band{Y0: y, Y1: y + h}
		y += h
	}
	return bands
}
