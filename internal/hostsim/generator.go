// Package hostsim generates synthetic host event streams for exercising the
// watchdog without a game client attached.
package hostsim

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// DefaultEventDist weights the event kinds emitted after the session preamble.
const DefaultEventDist = "inventory:50,currency:30,tomestones:10,allowance:10"

// Item ids the generator draws from when none are configured.
var DefaultItemIDs = []uint32{20, 21, 22, 25, 27, 28, 46, 47, 48, 41784, 41785}

// Config controls a generator.
type Config struct {
	Seed        int64
	EventDist   string
	ItemIDs     []uint32
	MaxCount    uint32
	TerritoryID uint32
}

type weightedValue struct {
	value  string
	weight int
}

// Generator produces host events. It is not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	dist   []weightedValue
	items  []uint32
	max    uint32
	zone   uint32
	now    func() time.Time
	weekly uint32
}

// NewGenerator validates cfg and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	distSpec := cfg.EventDist
	if distSpec == "" {
		distSpec = DefaultEventDist
	}
	dist, err := parseDistribution(distSpec)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	items := cfg.ItemIDs
	if len(items) == 0 {
		items = DefaultItemIDs
	}
	maxCount := cfg.MaxCount
	if maxCount == 0 {
		maxCount = 2000
	}
	zone := cfg.TerritoryID
	if zone == 0 {
		zone = 129
	}

	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		dist:  dist,
		items: items,
		max:   maxCount,
		zone:  zone,
		now:   time.Now,
	}, nil
}

// parseDistribution parses "kind:weight,kind:weight". Kinds must be one of
// inventory, currency, tomestones or allowance.
func parseDistribution(spec string) ([]weightedValue, error) {
	var dist []weightedValue
	total := 0
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, weightStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid distribution entry %q: expected kind:weight", part)
		}
		switch kind {
		case "inventory", "currency", "tomestones", "allowance":
		default:
			return nil, fmt.Errorf("unknown event kind %q", kind)
		}
		weight, err := strconv.Atoi(weightStr)
		if err != nil || weight < 0 {
			return nil, fmt.Errorf("invalid weight for %q: %q", kind, weightStr)
		}
		total += weight
		dist = append(dist, weightedValue{value: kind, weight: weight})
	}
	if total == 0 {
		return nil, fmt.Errorf("distribution %q has no weight", spec)
	}
	return dist, nil
}

// Preamble returns the events of a fresh login that ends with the session
// settled in a territory.
func (g *Generator) Preamble() []*events.HostEvent {
	ts := g.now().UnixMilli()
	return []*events.HostEvent{
		{Type: events.TypeConditionChanged, TS: ts, Flag: events.FlagBetweenAreas, Value: true},
		{Type: events.TypeLogin, TS: ts},
		{Type: events.TypeTerritoryChanged, TS: ts, TerritoryID: g.zone},
		{Type: events.TypePlayerLoaded, TS: ts},
		{Type: events.TypeConditionChanged, TS: ts, Flag: events.FlagBetweenAreas, Value: false},
	}
}

// Next returns one random state change.
func (g *Generator) Next() *events.HostEvent {
	ts := g.now().UnixMilli()
	switch g.pick() {
	case "currency":
		return &events.HostEvent{
			Type:   events.TypeCurrencyChanged,
			TS:     ts,
			ItemID: g.item(),
			Count:  uint32(g.rng.Int63n(int64(g.max) + 1)),
			Max:    g.max,
		}
	case "tomestones":
		g.weekly = min(g.weekly+uint32(g.rng.Intn(100)), 450)
		return &events.HostEvent{Type: events.TypeTomestonesChanged, TS: ts, WeeklyAcquired: g.weekly}
	case "allowance":
		return &events.HostEvent{Type: events.TypeAllowanceChanged, TS: ts, Allowance: uint32(g.rng.Intn(21))}
	default:
		quality := subject.QualityNormal
		if g.rng.Intn(4) == 0 {
			quality = subject.QualityHigh
		}
		return &events.HostEvent{
			Type: events.TypeInventoryChanged,
			TS:   ts,
			Items: []events.ItemCount{{
				ItemID:  g.item(),
				Quality: quality,
				Count:   uint32(g.rng.Int63n(int64(g.max) + 1)),
			}},
		}
	}
}

func (g *Generator) item() uint32 {
	return g.items[g.rng.Intn(len(g.items))]
}

func (g *Generator) pick() string {
	total := 0
	for _, wv := range g.dist {
		total += wv.weight
	}
	r := g.rng.Intn(total)
	for _, wv := range g.dist {
		if r < wv.weight {
			return wv.value
		}
		r -= wv.weight
	}
	return g.dist[len(g.dist)-1].value
}
