package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue/v2"
	"github.com/l33tlabs/leetgate/errors"
	"github.com/l33tlabs/leetgate/server/metrics"
)

// QueueMiddleware implements a FIFO admission queue for translation
// requests. Each upstream call is network-bound and unmetered, so under
// load the queue serializes dispatch instead of letting every inflight
// request hammer the upstream at once.
//
// Request lifecycle:
//   - An incoming request is appended to the queue if space is available
//   - Each queued request holds a channel that signals its completion
//   - A request waits for its predecessor's channel before proceeding
//   - When a request completes, its entry is removed and its channel
//     closed, releasing the next waiter
//
// A full queue rejects the request with 503 rather than blocking
// indefinitely.
type QueueMiddleware struct {
	queue   *queue.Queue[chan struct{}] // FIFO queue of completion channels
	maxSize atomic.Int64                // Maximum queue size, updated atomically
	mu      sync.Mutex                  // Protects queue operations
	metrics *metrics.Metrics            // Prometheus metrics for monitoring
}

// QueueConfig defines the operational parameters for the queue middleware.
type QueueConfig struct {
	MaxSize int64            // Maximum number of requests held in the queue
	Metrics *metrics.Metrics // Metrics collector for monitoring, may be nil
}

// NewQueueMiddleware initializes a new queue middleware with the given
// configuration. The queue begins accepting requests immediately.
func NewQueueMiddleware(cfg QueueConfig) *QueueMiddleware {
	qm := &QueueMiddleware{
		queue:   queue.New[chan struct{}](),
		metrics: cfg.Metrics,
	}
	qm.maxSize.Store(cfg.MaxSize)
	return qm
}

// SetMaxSize updates the maximum queue size at runtime.
func (qm *QueueMiddleware) SetMaxSize(size int64) {
	qm.maxSize.Store(size)
}

// Length returns the current number of queued requests.
func (qm *QueueMiddleware) Length() int {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	return qm.queue.Length()
}

// Handler wraps the next handler with queue admission control.
func (qm *QueueMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		qm.mu.Lock()
		if int64(qm.queue.Length()) >= qm.maxSize.Load() {
			qm.mu.Unlock()
			if qm.metrics != nil {
				qm.metrics.ErrorsTotal.WithLabelValues("queue_full").Inc()
			}
			errors.ErrorWithType(w, "Server busy, queue is full", errors.RateLimitError, http.StatusServiceUnavailable)
			return
		}

		// The predecessor's channel, if any, gates our turn.
		var predecessor chan struct{}
		if n := qm.queue.Length(); n > 0 {
			predecessor = qm.queue.Get(n - 1)
		}
		done := make(chan struct{})
		qm.queue.Add(done)
		qm.mu.Unlock()

		if qm.metrics != nil {
			qm.metrics.ActiveRequests.WithLabelValues("queued").Inc()
		}
		start := time.Now()
		if predecessor != nil {
			select {
			case <-predecessor:
			case <-r.Context().Done():
				// Client gave up while queued. The entry must still be
				// consumed in FIFO order, so hand the cleanup to a
				// goroutine that waits its turn before releasing.
				go func(pred, own chan struct{}) {
					<-pred
					qm.release(own)
				}(predecessor, done)
				if qm.metrics != nil {
					qm.metrics.ActiveRequests.WithLabelValues("queued").Dec()
				}
				return
			}
		}

		if qm.metrics != nil {
			qm.metrics.ActiveRequests.WithLabelValues("queued").Dec()
			qm.metrics.ActiveRequests.WithLabelValues("processing").Inc()
			qm.metrics.RequestDuration.WithLabelValues("queue_wait").Observe(time.Since(start).Seconds())
		}

		defer func() {
			qm.release(done)
			if qm.metrics != nil {
				qm.metrics.ActiveRequests.WithLabelValues("processing").Dec()
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// release removes the head entry (which is ours once our predecessor
// has finished) and closes our channel so the next waiter proceeds.
func (qm *QueueMiddleware) release(done chan struct{}) {
	qm.mu.Lock()
	if qm.queue.Length() > 0 {
		qm.queue.Remove()
	}
	qm.mu.Unlock()
	close(done)
}
