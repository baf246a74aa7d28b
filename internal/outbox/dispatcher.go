// Package outbox delivers role side effects recorded by business
// transactions. Delivery is asynchronous with bounded retries; the
// business transaction never waits on the external system.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/metrics"
	"github.com/emberhold/GuildShop_Go/internal/repository"
	"github.com/emberhold/GuildShop_Go/internal/roles"
	"github.com/emberhold/GuildShop_Go/internal/worker"
)

// Options configures the dispatcher
type Options struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Workers    int
	QueueSize  int
}

// Dispatcher drains the role change outbox on a fixed cadence
type Dispatcher struct {
	repo    repository.Outbox
	users   repository.Economy
	manager roles.Manager
	pool    *worker.Pool
	opts    Options

	mu       sync.Mutex
	inflight map[int64]bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Zero option fields fall back to
// the package defaults. Call Start to begin delivery.
func NewDispatcher(repo repository.Outbox, users repository.Economy, manager roles.Manager, opts Options) *Dispatcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &Dispatcher{
		repo:     repo,
		users:    users,
		manager:  manager,
		pool:     worker.NewPool(opts.Workers, opts.QueueSize),
		opts:     opts,
		inflight: make(map[int64]bool),
		quit:     make(chan struct{}),
	}
}

// Start launches the worker pool and the tick loop
func (d *Dispatcher) Start(ctx context.Context) {
	log := logger.FromContext(ctx)
	d.pool.Start()
	d.wg.Add(1)
	go d.run(ctx)
	log.Info(LogMsgDispatcherStarted, "interval", d.opts.Interval, "batch_size", d.opts.BatchSize)
}

// Stop drains in-flight deliveries and stops the loop
func (d *Dispatcher) Stop(ctx context.Context) {
	close(d.quit)
	d.wg.Wait()
	d.pool.Stop()
	logger.FromContext(ctx).Info(LogMsgDispatcherStopped)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick(ctx)
		case <-d.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick fetches a batch of pending changes and hands them to the pool.
// Entries already handed out are skipped so one change is never delivered
// twice concurrently.
func (d *Dispatcher) tick(ctx context.Context) {
	log := logger.FromContext(ctx)

	pending, err := d.repo.FetchPending(ctx, d.opts.BatchSize)
	if err != nil {
		log.Error(LogMsgFetchFailed, "error", err)
		return
	}
	metrics.OutboxPendingEntries.Set(float64(len(pending)))

	for _, change := range pending {
		d.mu.Lock()
		if d.inflight[change.ID] {
			d.mu.Unlock()
			continue
		}
		d.inflight[change.ID] = true
		d.mu.Unlock()

		job := &deliveryJob{dispatcher: d, change: change}
		if !d.pool.TryEnqueue(job) {
			d.release(change.ID)
			log.Warn(LogMsgQueueFull, "change_id", change.ID)
		}
	}
}

func (d *Dispatcher) release(id int64) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}

// DispatchOnce synchronously processes one batch. Used at shutdown to
// flush and by tests.
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	pending, err := d.repo.FetchPending(ctx, d.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending role changes: %w", err)
	}
	metrics.OutboxPendingEntries.Set(float64(len(pending)))
	for _, change := range pending {
		d.deliver(ctx, change)
	}
	return nil
}

// deliver attempts one role change and records the outcome
func (d *Dispatcher) deliver(ctx context.Context, change domain.RoleChange) {
	log := logger.FromContext(ctx)

	user, err := d.users.GetUserByID(ctx, change.UserID)
	if err == nil && user == nil {
		// Holder deleted since the change was recorded; nothing to do
		log.Warn(LogMsgHolderMissing, "change_id", change.ID, "user_id", change.UserID)
		d.markAbandoned(ctx, change, "user no longer exists")
		return
	}
	if err != nil {
		d.markFailed(ctx, change, err)
		return
	}

	switch change.Kind {
	case domain.RoleChangeGrant:
		err = d.manager.GrantRole(ctx, user.DiscordID, change.ExternalRoleID)
	case domain.RoleChangeRevoke:
		err = d.manager.RevokeRole(ctx, user.DiscordID, change.ExternalRoleID)
	default:
		d.markAbandoned(ctx, change, fmt.Sprintf("unknown kind %q", change.Kind))
		return
	}

	if err != nil {
		if change.Attempts+1 >= d.opts.MaxRetries {
			log.Error(LogMsgDeliveryAbandoned, "change_id", change.ID, "attempts", change.Attempts+1, "error", err)
			d.markAbandoned(ctx, change, err.Error())
			return
		}
		log.Warn(LogMsgDeliveryFailed, "change_id", change.ID, "attempts", change.Attempts+1, "error", err)
		d.markFailed(ctx, change, err)
		return
	}

	if err := d.repo.MarkDelivered(ctx, change.ID); err != nil {
		log.Error(LogMsgMarkFailed, "change_id", change.ID, "error", err)
		return
	}
	metrics.RoleSideEffects.WithLabelValues(change.Kind, OutcomeDelivered).Inc()
}

func (d *Dispatcher) markFailed(ctx context.Context, change domain.RoleChange, cause error) {
	if err := d.repo.MarkFailed(ctx, change.ID, cause.Error()); err != nil {
		logger.FromContext(ctx).Error(LogMsgMarkFailed, "change_id", change.ID, "error", err)
	}
	metrics.RoleSideEffects.WithLabelValues(change.Kind, OutcomeFailed).Inc()
}

func (d *Dispatcher) markAbandoned(ctx context.Context, change domain.RoleChange, reason string) {
	if err := d.repo.MarkAbandoned(ctx, change.ID, reason); err != nil {
		logger.FromContext(ctx).Error(LogMsgMarkFailed, "change_id", change.ID, "error", err)
	}
	metrics.RoleSideEffects.WithLabelValues(change.Kind, OutcomeAbandoned).Inc()
}

// deliveryJob adapts one role change to the worker pool
type deliveryJob struct {
	dispatcher *Dispatcher
	change     domain.RoleChange
}

func (j *deliveryJob) Process(ctx context.Context) error {
	defer j.dispatcher.release(j.change.ID)
	j.dispatcher.deliver(ctx, j.change)
	return nil
}
