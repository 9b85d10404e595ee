// Package notify delivers sync triggers for critical changes to the
// sync layer without blocking the mutation that caused them.
package notify

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Change types sent after transaction mutations.
const (
	TransactionAdded      = "transaction_added"
	TransactionUpdated    = "transaction_updated"
	TransactionDeleted    = "transaction_deleted"
	TransactionReconciled = "transaction_reconciled"
)

// Handler is called once per sync trigger.
type Handler func(ctx context.Context, changeType string) error

var triggers = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sync_triggers_total",
		Help: "How many sync triggers were handled, partitioned by change type and result.",
	},
	[]string{"change_type", "result"},
)

// Metrics are the prometheus collectors of this package.
var Metrics = []prometheus.Collector{triggers}

// Notifier is a buffered queue of sync triggers with a single worker.
// It is safe for concurrent use.
type Notifier struct {
	queue     chan string
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	handler   Handler
}

// New creates a Notifier. size is the number of triggers that can be queued
// before new triggers are dropped.
func New(size int, handler Handler) *Notifier {
	if size < 1 {
		size = 1
	}

	return &Notifier{
		queue:     make(chan string, size),
		closeChan: make(chan struct{}),
		handler:   handler,
	}
}

// Start starts the worker. ctx is passed to the handler, cancelling it does
// not stop the worker. Use Stop for that.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go n.worker(context.WithoutCancel(ctx))
}

// TriggerSyncForCriticalChange queues a sync trigger. It never blocks: if the
// queue is full or the Notifier is stopped, the trigger is dropped.
func (n *Notifier) TriggerSyncForCriticalChange(changeType string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		log.Warn().Str("source", "notify").Str("changeType", changeType).Msg("notifier is stopped, dropping sync trigger")
		triggers.WithLabelValues(changeType, "dropped").Inc()
		return
	}

	select {
	case n.queue <- changeType:
	default:
		log.Warn().Str("source", "notify").Str("changeType", changeType).Msg("sync queue is full, dropping sync trigger")
		triggers.WithLabelValues(changeType, "dropped").Inc()
	}
}

func (n *Notifier) worker(ctx context.Context) {
	defer n.wg.Done()

	for {
		select {
		case <-n.closeChan:
			n.drain(ctx)
			return
		case changeType := <-n.queue:
			n.handle(ctx, changeType)
		}
	}
}

// drain handles all triggers that were queued before Stop.
func (n *Notifier) drain(ctx context.Context) {
	for {
		select {
		case changeType := <-n.queue:
			n.handle(ctx, changeType)
		default:
			return
		}
	}
}

func (n *Notifier) handle(ctx context.Context, changeType string) {
	if n.handler == nil {
		triggers.WithLabelValues(changeType, "ok").Inc()
		return
	}

	err := n.handler(ctx, changeType)
	if err != nil {
		log.Error().Str("source", "notify").Str("changeType", changeType).Err(err).Msg("sync trigger failed")
		triggers.WithLabelValues(changeType, "error").Inc()
		return
	}

	triggers.WithLabelValues(changeType, "ok").Inc()
}

// Stop stops the worker after it has handled all queued triggers.
func (n *Notifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.closeChan)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
