package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var (
	ErrAuditQueueFull   = errors.New("audit queue is full")
	ErrDispatcherClosed = errors.New("audit dispatcher is closed")
)

// auditWriteTimeout bounds a single store write. Entries outlive the request
// that produced them, so the request context is never used for the write.
const auditWriteTimeout = 5 * time.Second

// Audit entry outcomes.
const (
	auditWritten = "written"
	auditFailed  = "failed"
	auditDropped = "dropped"
)

// AuditDispatcher is the asynchronous login audit sink. Append only enqueues;
// a fixed pool of goroutines writes the entries to the repository.
type AuditDispatcher struct {
	repo         store.LoginAuditRepository
	queue        chan models.LoginAuditEntry
	workers      int
	writeTimeout time.Duration
	logger       *logger.Logger

	entries *prometheus.CounterVec

	// mu guards closed and the queue close; senders hold the read lock.
	mu     sync.RWMutex
	closed bool

	start sync.Once
	wg    sync.WaitGroup
}

func NewAuditDispatcher(repo store.LoginAuditRepository, cfg config.Workers, logger *logger.Logger) *AuditDispatcher {
	size := cfg.AuditQueueSize
	if size < 1 {
		size = 1
	}
	workers := cfg.AuditWorkers
	if workers < 1 {
		workers = 1
	}

	return &AuditDispatcher{
		repo:         repo,
		queue:        make(chan models.LoginAuditEntry, size),
		workers:      workers,
		writeTimeout: auditWriteTimeout,
		logger:       logger,
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity_keeper",
				Subsystem: "audit",
				Name:      "entries_total",
				Help:      "Login audit entries by outcome",
			},
			[]string{"result"},
		),
	}
}

// Register exposes the dispatcher metrics: the entry counter and the current
// queue length.
func (d *AuditDispatcher) Register(reg prometheus.Registerer) error {
	queued := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "identity_keeper",
			Subsystem: "audit",
			Name:      "queue_length",
			Help:      "Login audit entries waiting to be written",
		},
		func() float64 { return float64(len(d.queue)) },
	)

	for _, c := range []prometheus.Collector{d.entries, queued} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("error registering audit collector: %w", err)
		}
	}
	return nil
}

// Append enqueues entry without blocking. A full queue drops the entry.
func (d *AuditDispatcher) Append(_ context.Context, entry models.LoginAuditEntry) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- entry:
		return nil
	default:
		d.entries.WithLabelValues(auditDropped).Inc()
		return ErrAuditQueueFull
	}
}

// Run starts the writer goroutines. Subsequent calls do nothing.
func (d *AuditDispatcher) Run() {
	d.start.Do(func() {
		d.logger.Info().Int("workers", d.workers).Int("queue_size", cap(d.queue)).Msg("starting login audit dispatcher")

		d.wg.Add(d.workers)
		for i := 0; i < d.workers; i++ {
			go d.loop()
		}
	})
}

// Shutdown stops accepting entries and waits until the queue is drained or
// ctx is done. It starts the writers if Run was never called so that
// accepted entries are still written.
func (d *AuditDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.Run()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info().Msg("login audit dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit queue was not drained: %w", ctx.Err())
	}
}

func (d *AuditDispatcher) loop() {
	defer d.wg.Done()

	for entry := range d.queue {
		d.write(entry)
	}
}

func (d *AuditDispatcher) write(entry models.LoginAuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	if err := d.repo.Append(ctx, entry); err != nil {
		d.entries.WithLabelValues(auditFailed).Inc()
		d.logger.Err(err).
			Str("func", "*AuditDispatcher.write").
			Str("user_id", entry.UserID).
			Msg("login audit entry was lost")
		return
	}

	d.entries.WithLabelValues(auditWritten).Inc()
}
