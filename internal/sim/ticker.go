package sim

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mini-hcmc-metro/tracker/internal/metrics"
	"github.com/mini-hcmc-metro/tracker/internal/models"
	"github.com/mini-hcmc-metro/tracker/internal/snapshot"
)

// metricsLogEvery controls how often tick duration statistics are logged.
const metricsLogEvery = 20

// Ticker recomputes the fleet snapshot on a fixed interval and publishes it
// to the snapshot store. Each tick is an independent pure function of
// "current time + schedule"; ticks carry a monotonic sequence number so a
// slow tick that outlives its interval cannot clobber a newer result.
type Ticker struct {
	walker   *Walker
	store    *snapshot.Store
	interval time.Duration

	seq    atomic.Uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   metrics.Welford
}

// NewTicker creates a ticker that publishes to the given store.
func NewTicker(walker *Walker, store *snapshot.Store, interval time.Duration) *Ticker {
	return &Ticker{walker: walker, store: store, interval: interval}
}

// Tick computes and publishes one snapshot for the given instant. It is
// safe to call directly from an external scheduler instead of Start.
func (t *Ticker) Tick(ctx context.Context, now time.Time) error {
	seq := t.seq.Add(1)
	started := time.Now()

	positions, err := t.walker.Snapshot(ctx, now)
	if err != nil {
		return err
	}

	snap := models.FleetSnapshot{
		TickID:     uuid.New().String(),
		ComputedAt: now,
		Positions:  positions,
	}
	if !t.store.Publish(seq, snap) {
		log.Printf("Sim: tick %d superseded before publishing, dropped", seq)
		return nil
	}

	t.observe(time.Since(started), seq, len(positions))
	return nil
}

func (t *Ticker) observe(elapsed time.Duration, seq uint64, trains int) {
	t.statsMu.Lock()
	t.stats.Observe(elapsed.Seconds() * 1000)
	mean, stddev, count := t.stats.Mean(), t.stats.StdDev(), t.stats.Count()
	t.statsMu.Unlock()

	if seq%metricsLogEvery == 0 {
		log.Printf("Sim: tick %d published %d trains (tick time mean=%.1fms stddev=%.1fms over %d ticks)",
			seq, trains, mean, stddev, count)
	}
}

// Start launches the tick loop. An immediate tick runs before the first
// interval elapses. Start is not reentrant; call Stop before starting
// again.
func (t *Ticker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		if err := t.Tick(ctx, time.Now()); err != nil {
			log.Printf("Sim: initial tick failed: %v", err)
		}

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				if err := t.Tick(ctx, now); err != nil {
					log.Printf("Sim: tick failed: %v", err)
				}
			case <-ctx.Done():
				log.Println("Sim: tick loop stopped")
				return
			}
		}
	}()
}

// Stop cancels the tick loop and waits for the in-flight tick to finish.
func (t *Ticker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}
