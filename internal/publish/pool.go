package publish

import (
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/metrics"
)

// Stats summarizes one pool run.
type Stats struct {
	Published int
	Failed    int
	Empty     int
	BackedUp  int
}

func (s *Stats) merge(o Stats) {
	s.Published += o.Published
	s.Failed += o.Failed
	s.Empty += o.Empty
	s.BackedUp += o.BackedUp
}

// Pool publishes work units with a fixed number of workers.
type Pool struct {
	publisher *Publisher
	workers   int
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewPool returns a pool of n workers; n below 1 is treated as 1.
func NewPool(publisher *Publisher, n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{
		publisher: publisher,
		workers:   n,
		logger:    publisher.logger,
		recorder:  publisher.recorder,
	}
}

// Run publishes every unit exactly once and returns after all workers have
// exited. The queue is filled with every unit followed by one nil sentinel
// per worker before any worker starts; a worker exits on its sentinel.
// A failed unit is logged and counted and does not affect the others.
func (p *Pool) Run(units []WorkUnit) Stats {
	queue := make(chan *WorkUnit, len(units)+p.workers)
	for i := range units {
		queue <- &units[i]
	}
	for range p.workers {
		queue <- nil
	}

	p.recorder.SetWorkers(p.workers)
	results := make([]Stats, p.workers)

	var wg sync.WaitGroup
	for w := range p.workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = p.work(id, queue)
		}(w)
	}
	wg.Wait()

	var total Stats
	for _, r := range results {
		total.merge(r)
	}
	return total
}

func (p *Pool) work(id int, queue <-chan *WorkUnit) Stats {
	var st Stats
	for u := range queue {
		if u == nil {
			return st
		}
		kind := u.Kind.String()
		start := time.Now()
		out, err := p.publisher.Publish(u)
		p.recorder.ObservePublishDuration(kind, time.Since(start))
		if err != nil {
			st.Failed++
			p.recorder.IncPublishResult(kind, metrics.ResultFailed)
			p.logger.Warn("publish failed",
				logfields.Worker(id),
				logfields.Kind(kind),
				logfields.Name(u.Name),
				logfields.Error(err))
			continue
		}

		st.Published++
		result := metrics.ResultSuccess
		if out.Empty {
			st.Empty++
			result = metrics.ResultEmpty
		}
		if out.BackedUp {
			st.BackedUp++
		}
		p.recorder.IncPublishResult(kind, result)
		p.logger.Debug("published",
			logfields.Worker(id),
			logfields.Kind(kind),
			logfields.Path(u.RelPath))
	}
	return st
}
