package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-catalog/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Job is one unit of work. Jobs sharing a Key are processed in order by the
// same worker.
type Job struct {
	Key     string
	Payload []byte
}

// ProcessFunc handles a single job. A returned error is logged and dropped.
type ProcessFunc func(ctx context.Context, job Job) error

// Dispatcher routes jobs to a fixed set of workers using consistent hashing
// on the job key.
type Dispatcher struct {
	workers []chan Job
	process ProcessFunc
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, process ProcessFunc, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Job, numWorkers),
		process: process,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its key. It blocks once
// that worker's buffer is full, or returns false if ctx is done first.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) bool {
	idx := d.shardIndex(job.Key)
	select {
	case d.workers[idx] <- job:
		metrics.MessagesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	case <-ctx.Done():
		return false
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Job) {
	depth := metrics.MessagesQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.process(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("key", job.Key).
					Int("worker_id", id).
					Msg("job processing failed")
			}
		}
	}
}
