package hostsim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/events"
)

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    int
		wantErr bool
	}{
		{name: "default", spec: DefaultEventDist, want: 4},
		{name: "single", spec: "currency:1", want: 1},
		{name: "spaces", spec: " inventory:3 , allowance:1 ", want: 2},
		{name: "unknown kind", spec: "login:5", wantErr: true},
		{name: "missing weight", spec: "inventory", wantErr: true},
		{name: "negative weight", spec: "inventory:-1", wantErr: true},
		{name: "zero total", spec: "inventory:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, err := parseDistribution(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDistribution() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(dist) != tt.want {
				t.Errorf("parseDistribution() = %d entries, want %d", len(dist), tt.want)
			}
		})
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a, err := NewGenerator(Config{Seed: 42})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	b, _ := NewGenerator(Config{Seed: 42})

	for i := 0; i < 50; i++ {
		ea, eb := a.Next(), b.Next()
		if ea.Type != eb.Type || ea.ItemID != eb.ItemID || ea.Count != eb.Count {
			t.Fatalf("event %d differs: %+v vs %+v", i, ea, eb)
		}
	}
}

func TestGenerator_EventsAreValid(t *testing.T) {
	gen, err := NewGenerator(Config{Seed: 7, ItemIDs: []uint32{28}, MaxCount: 100})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	for _, ev := range gen.Preamble() {
		if err := ev.Validate(); err != nil {
			t.Errorf("preamble event %s invalid: %v", ev.Type, err)
		}
	}
	for i := 0; i < 200; i++ {
		ev := gen.Next()
		if err := ev.Validate(); err != nil {
			t.Fatalf("event %s invalid: %v", ev.Type, err)
		}
		if ev.Count > 100 {
			t.Errorf("count %d exceeds max", ev.Count)
		}
		if ev.Type == events.TypeTomestonesChanged && ev.WeeklyAcquired > 450 {
			t.Errorf("weekly acquired %d exceeds cap", ev.WeeklyAcquired)
		}
	}
}

func TestGenerator_PreambleSettlesSession(t *testing.T) {
	gen, _ := NewGenerator(Config{Seed: 1})
	pre := gen.Preamble()

	if pre[1].Type != events.TypeLogin {
		t.Errorf("second event = %s, want login", pre[1].Type)
	}
	last := pre[len(pre)-1]
	if last.Type != events.TypeConditionChanged || last.Value {
		t.Errorf("last event = %+v, want between_areas cleared", last)
	}
}

func TestRun(t *testing.T) {
	gen, _ := NewGenerator(Config{Seed: 3})
	pub := &FakePublisher{}

	sent, err := Run(context.Background(), gen, pub, 1000, time.Minute, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := len(gen.Preamble()) + 10
	if sent != want || len(pub.Events) != want {
		t.Errorf("Run() sent %d (published %d), want %d", sent, len(pub.Events), want)
	}
}

func TestRun_Errors(t *testing.T) {
	gen, _ := NewGenerator(Config{Seed: 3})

	if _, err := Run(context.Background(), gen, &FakePublisher{}, 0, time.Second, 1); err == nil {
		t.Error("Run() with zero rps returned nil error")
	}

	pub := &FakePublisher{Err: errors.New("broker down")}
	if _, err := Run(context.Background(), gen, pub, 10, time.Second, 1); err == nil {
		t.Error("Run() with failing publisher returned nil error")
	}
}
