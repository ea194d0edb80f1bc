package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"isccd/internal/backoff"
	"isccd/internal/config"
	"isccd/internal/dedup"
	"isccd/internal/journal"
	"isccd/internal/logging"
	"isccd/internal/monitor"
	"isccd/internal/notifications"
	"isccd/internal/omero"
	"isccd/internal/processor"
)

const processorVersion = "isccd/0.1.0"

// Orchestrator owns the poll-process loop and the connection state machine.
type Orchestrator struct {
	cfg      *config.Config
	client   omero.Client
	store    *journal.Store
	monitor  *monitor.Monitor
	filter   *dedup.Filter
	computer *processor.Computer
	notifier notifications.Notifier
	logger   *slog.Logger

	policy backoff.Policy
	rng    *rand.Rand
	// sleep is swapped out in tests so backoff and poll waits take no
	// real time.
	sleep func(ctx context.Context, d time.Duration) error

	runID    string
	identity string

	mu    sync.Mutex
	state State
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSleep overrides the wait used between polls and reconnect attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithJitterSource sets the randomness source for backoff jitter. A nil
// source disables jitter, making the reconnect schedule deterministic.
func WithJitterSource(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		o.rng = rng
	}
}

// New wires the pipeline stages around the given client and journal.
func New(cfg *config.Config, client omero.Client, store *journal.Store, notifier notifications.Notifier, logger *slog.Logger, opts ...Option) *Orchestrator {
	runID := uuid.NewString()
	o := &Orchestrator{
		cfg:      cfg,
		client:   client,
		store:    store,
		monitor:  monitor.New(client, logger),
		filter:   dedup.New(client, store, cfg.Service.Namespace, logger),
		computer: processor.New(client, cfg.Service.ChunkSizeBytes, logger),
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
		policy:   backoff.Default(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepContext,
		runID:    runID,
		identity: processorVersion + " run-" + runID,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(next State) {
	o.mu.Lock()
	prev := o.state
	o.state = next
	o.mu.Unlock()
	if prev != next {
		o.logger.Debug("state transition",
			logging.Args(
				logging.String("from", prev.String()),
				logging.String("to", next.String()),
			)...)
	}
}

// Run executes the service loop until ctx is cancelled. An in-flight asset
// finishes before shutdown; the connection is closed on the way out.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("service starting",
		logging.Args(
			logging.String("run_id", o.runID),
			logging.String("namespace", o.cfg.Service.Namespace),
		)...)
	o.publish(ctx, notifications.EventServiceStarted, notifications.Payload{"run_id": o.runID})

	for ctx.Err() == nil {
		if err := o.connect(ctx); err != nil {
			break
		}
		o.pollLoop(ctx)
		o.client.Close()
		o.setState(StateDisconnected)
	}

	o.setState(StateStopping)
	o.client.Close()
	o.publish(context.WithoutCancel(ctx), notifications.EventServiceStopped, notifications.Payload{"run_id": o.runID})
	o.setState(StateStopped)
	o.logger.Info("service stopped", logging.Args(logging.String("run_id", o.runID))...)
	return nil
}

// RunOnce performs a single connect, poll, and batch-process cycle. An empty
// batch is success; a connect or processing fault is returned to the caller.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	o.setState(StateConnecting)
	if err := o.client.Connect(ctx); err != nil {
		o.setState(StateStopped)
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		o.client.Close()
		o.setState(StateStopped)
	}()

	o.setState(StatePolling)
	batch, err := o.pollBatch(ctx)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		o.logger.Info("no new assets")
		return nil
	}

	o.setState(StateProcessing)
	return o.processBatch(ctx, batch)
}

// connect attempts the handshake until it succeeds or ctx is cancelled,
// sleeping the backoff schedule between attempts.
func (o *Orchestrator) connect(ctx context.Context) error {
	o.setState(StateConnecting)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := o.client.Connect(ctx)
		if err == nil {
			o.logger.Info("connected",
				logging.Args(
					logging.String("host", o.cfg.Omero.Host),
					logging.Int("port", o.cfg.Omero.Port),
				)...)
			return nil
		}

		delay := o.policy.DelayWithJitter(attempt, o.rng)
		o.logger.Warn("connect failed, retrying",
			logging.Args(
				logging.Error(err),
				logging.Int("attempt", attempt+1),
				logging.Duration("retry_in", delay),
			)...)
		if err := o.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// pollLoop runs the polling and processing states until a connection fault
// or shutdown forces a return. The caller owns reconnection.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	interval := time.Duration(o.cfg.Service.PollIntervalSeconds) * time.Second
	for ctx.Err() == nil {
		o.setState(StatePolling)
		batch, err := o.pollBatch(ctx)
		if err != nil {
			o.logger.Warn("poll failed, reconnecting", logging.Args(logging.Error(err))...)
			return
		}

		if len(batch) == 0 {
			if err := o.sleep(ctx, interval); err != nil {
				return
			}
			continue
		}

		o.setState(StateProcessing)
		if err := o.processBatch(ctx, batch); err != nil {
			o.logger.Warn("batch aborted, reconnecting", logging.Args(logging.Error(err))...)
			return
		}
	}
}

func (o *Orchestrator) pollBatch(ctx context.Context) ([]omero.AssetRef, error) {
	cur, err := o.store.Cursor(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	return o.monitor.Poll(ctx, cur, o.cfg.Service.BatchSize)
}

// processBatch handles assets in import order. A connection fault aborts the
// batch with the faulting asset uncommitted; shutdown stops between assets,
// never mid-asset.
func (o *Orchestrator) processBatch(ctx context.Context, batch []omero.AssetRef) error {
	for _, asset := range batch {
		if ctx.Err() != nil {
			return nil
		}
		// The in-flight asset runs to its terminal outcome even during
		// shutdown; cancellation is honored at the loop boundary above.
		if err := o.processAsset(context.WithoutCancel(ctx), asset); err != nil {
			return err
		}
	}
	return nil
}

// processAsset takes one asset to a terminal outcome. A nil return means the
// cursor advanced past the asset; an error is a connection fault that leaves
// the cursor untouched so the asset is retried after reconnect.
func (o *Orchestrator) processAsset(ctx context.Context, asset omero.AssetRef) error {
	processed, err := o.filter.IsProcessed(ctx, asset)
	if err != nil {
		return fmt.Errorf("dedup check for asset %d: %w", asset.ID, err)
	}
	if processed {
		o.logger.Info("asset already fingerprinted",
			logging.Args(logging.Int64("asset_id", asset.ID), logging.String("name", asset.Name))...)
		o.advanceCursor(ctx, asset)
		return nil
	}

	start := time.Now()
	result, err := o.computer.Compute(ctx, asset)
	if err != nil {
		// Compute failures are never connection faults. Journal the skip
		// and move the cursor so the asset cannot wedge the pipeline.
		o.logger.Warn("asset unreadable, skipping",
			logging.Args(
				logging.Int64("asset_id", asset.ID),
				logging.String("name", asset.Name),
				logging.Error(err),
			)...)
		o.recordOutcome(ctx, journal.Outcome{
			AssetID:    asset.ID,
			Namespace:  o.cfg.Service.Namespace,
			Kind:       journal.OutcomeSkipped,
			SourceFile: asset.Name,
			Detail:     err.Error(),
		})
		o.advanceCursor(ctx, asset)
		o.publish(ctx, notifications.EventAssetSkipped, notifications.Payload{
			"asset_id":   asset.ID,
			"asset_name": asset.Name,
			"run_id":     o.runID,
		})
		return nil
	}

	record := processor.BuildRecord(asset, result, o.identity, time.Now())
	if err := o.writeRecord(ctx, asset, record); err != nil {
		return err
	}

	o.recordOutcome(ctx, journal.Outcome{
		AssetID:    asset.ID,
		Namespace:  o.cfg.Service.Namespace,
		Kind:       journal.OutcomeCommitted,
		Code:       record.Code,
		SourceFile: asset.Name,
	})
	o.advanceCursor(ctx, asset)

	o.logger.Info("asset fingerprinted",
		logging.Args(
			logging.Int64("asset_id", asset.ID),
			logging.String("name", asset.Name),
			logging.String("iscc", record.Code),
			logging.Int64("bytes", result.Filesize),
			logging.Duration("elapsed", time.Since(start)),
		)...)
	o.publish(ctx, notifications.EventFingerprinted, notifications.Payload{
		"asset_id":   asset.ID,
		"asset_name": asset.Name,
		"iscc":       record.Code,
		"run_id":     o.runID,
	})
	return nil
}

// writeRecord commits the annotation, retrying once on failure. A second
// failure escalates to a connection fault.
func (o *Orchestrator) writeRecord(ctx context.Context, asset omero.AssetRef, record omero.Record) error {
	namespace := o.cfg.Service.Namespace
	err := o.client.WriteRecord(ctx, asset.ID, namespace, record)
	if err == nil {
		return nil
	}

	o.logger.Warn("annotation write failed, retrying once",
		logging.Args(logging.Int64("asset_id", asset.ID), logging.Error(err))...)
	if err := o.client.WriteRecord(ctx, asset.ID, namespace, record); err != nil {
		return fmt.Errorf("write record for asset %d: %w", asset.ID, err)
	}
	return nil
}

func (o *Orchestrator) advanceCursor(ctx context.Context, asset omero.AssetRef) {
	cur := journal.Cursor{LastSeenAt: asset.ImportedAt, LastSeenID: asset.ID}
	if err := o.store.AdvanceCursor(ctx, cur); err != nil {
		// A stale cursor only costs a replayed dedup check next cycle.
		o.logger.Error("cursor advance failed",
			logging.Args(logging.Int64("asset_id", asset.ID), logging.Error(err))...)
	}
}

func (o *Orchestrator) recordOutcome(ctx context.Context, outcome journal.Outcome) {
	if err := o.store.RecordOutcome(ctx, outcome); err != nil {
		o.logger.Error("journal write failed",
			logging.Args(logging.Int64("asset_id", outcome.AssetID), logging.Error(err))...)
	}
}

func (o *Orchestrator) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		o.logger.Warn("notification delivery failed",
			logging.Args(logging.String("event", string(event)), logging.Error(err))...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
