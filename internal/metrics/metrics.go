// Package metrics collects engine counters and periodically publishes a
// snapshot to Redis so dashboards can read it without talking to the service.
package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for published snapshots.
	KeyPrefix = "watchdog:metrics:"
	// TTL is how long a snapshot stays in Redis if not refreshed.
	TTL = 2 * time.Minute
	// DefaultReportInterval is the default interval between Redis writes.
	DefaultReportInterval = 30 * time.Second
)

// Snapshot is the published state of the collector.
type Snapshot struct {
	Profile     string    `json:"profile"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`

	// Counters since start.
	ChecksTriggered uint64 `json:"checks_triggered"`
	PassesCompleted uint64 `json:"passes_completed"`
	SinkDeliveries  uint64 `json:"sink_deliveries"`
	Errors          uint64 `json:"errors"`

	// PassesPerSecond is measured over the last report interval.
	PassesPerSecond float64 `json:"passes_per_second"`
	AvgPassLatency  float64 `json:"avg_pass_latency_ns"`

	Custom map[string]uint64 `json:"custom,omitempty"`
}

// Collector counts engine activity. It is safe for concurrent use.
type Collector struct {
	profile        string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	received  atomic.Uint64
	processed atomic.Uint64
	published atomic.Uint64
	errors    atomic.Uint64

	totalLatencyNs atomic.Uint64

	rateMu        sync.Mutex
	lastReport    time.Time
	lastProcessed uint64

	customMu sync.RWMutex
	custom   map[string]*atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a collector for profile. redisClient may be nil, in
// which case nothing is published.
func NewCollector(profile string, redisClient *redis.Client) *Collector {
	now := time.Now().UTC()
	return &Collector{
		profile:        profile,
		redis:          redisClient,
		startedAt:      now,
		reportInterval: DefaultReportInterval,
		lastReport:     now,
		custom:         make(map[string]*atomic.Uint64),
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval between Redis writes. Call before Start.
func (c *Collector) SetReportInterval(interval time.Duration) {
	if interval > 0 {
		c.reportInterval = interval
	}
}

// Key returns the Redis key snapshots are written to.
func (c *Collector) Key() string {
	return KeyPrefix + c.profile
}

// Start publishes snapshots until ctx is done or Stop is called. A final
// snapshot is written on the way out.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.Publish(context.Background())
				return
			case <-c.stopCh:
				c.Publish(context.Background())
				return
			case <-ticker.C:
				c.Publish(ctx)
			}
		}
	}()
}

// Stop ends reporting and waits for the final write.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordReceived counts a check trigger.
func (c *Collector) RecordReceived() {
	c.received.Add(1)
}

// RecordProcessed counts a completed pass and its duration.
func (c *Collector) RecordProcessed(latency time.Duration) {
	c.processed.Add(1)
	c.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
}

// RecordPublished counts a sink delivery.
func (c *Collector) RecordPublished() {
	c.published.Add(1)
}

// RecordError counts a failed pass or sink call.
func (c *Collector) RecordError() {
	c.errors.Add(1)
}

// IncrementCustom increments a named counter.
func (c *Collector) IncrementCustom(name string) {
	c.AddCustom(name, 1)
}

// AddCustom adds value to a named counter.
func (c *Collector) AddCustom(name string, value uint64) {
	c.customMu.RLock()
	counter, ok := c.custom[name]
	c.customMu.RUnlock()

	if !ok {
		c.customMu.Lock()
		if counter, ok = c.custom[name]; !ok {
			counter = &atomic.Uint64{}
			c.custom[name] = counter
		}
		c.customMu.Unlock()
	}
	counter.Add(value)
}

// CustomNames returns the names of the custom counters, sorted.
func (c *Collector) CustomNames() []string {
	c.customMu.RLock()
	defer c.customMu.RUnlock()
	names := make([]string, 0, len(c.custom))
	for name := range c.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the current counters without publishing them.
func (c *Collector) Snapshot() *Snapshot {
	now := time.Now().UTC()
	processed := c.processed.Load()

	c.rateMu.Lock()
	var rate float64
	if elapsed := now.Sub(c.lastReport).Seconds(); elapsed > 0 {
		rate = float64(processed-c.lastProcessed) / elapsed
	}
	c.rateMu.Unlock()

	var avgLatency float64
	if processed > 0 {
		avgLatency = float64(c.totalLatencyNs.Load()) / float64(processed)
	}

	c.customMu.RLock()
	custom := make(map[string]uint64, len(c.custom))
	for name, counter := range c.custom {
		custom[name] = counter.Load()
	}
	c.customMu.RUnlock()

	return &Snapshot{
		Profile:         c.profile,
		StartedAt:       c.startedAt,
		LastUpdated:     now,
		ChecksTriggered: c.received.Load(),
		PassesCompleted: processed,
		SinkDeliveries:  c.published.Load(),
		Errors:          c.errors.Load(),
		PassesPerSecond: rate,
		AvgPassLatency:  avgLatency,
		Custom:          custom,
	}
}

// Publish writes the current snapshot to Redis and starts a new rate window.
func (c *Collector) Publish(ctx context.Context) {
	if c.redis == nil {
		return
	}

	snap := c.Snapshot()

	c.rateMu.Lock()
	c.lastReport = snap.LastUpdated
	c.lastProcessed = snap.PassesCompleted
	c.rateMu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("Failed to marshal metrics", "profile", c.profile, "error", err)
		return
	}

	if err := c.redis.Set(ctx, c.Key(), data, TTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "profile", c.profile, "error", err)
		return
	}
	slog.Debug("Metrics written to Redis", "key", c.Key())
}
