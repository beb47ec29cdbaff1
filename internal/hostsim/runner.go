package hostsim

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Run publishes the login preamble followed by random changes at rps until
// duration has elapsed, count events have been sent, or ctx is done. A zero
// count means no limit.
func Run(ctx context.Context, gen *Generator, pub Publisher, rps float64, duration time.Duration, count int) (int, error) {
	if rps <= 0 {
		return 0, fmt.Errorf("rps must be greater than 0")
	}

	sent := 0
	for _, ev := range gen.Preamble() {
		if err := pub.Publish(ctx, ev); err != nil {
			return sent, fmt.Errorf("failed to publish %s: %w", ev.Type, err)
		}
		sent++
	}
	slog.Info("Session preamble published", "events", sent)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / rps))
	defer ticker.Stop()
	deadline := time.Now().Add(duration)
	changes := 0

	for {
		if count > 0 && changes >= count {
			return sent, nil
		}
		select {
		case <-ctx.Done():
			return sent, nil
		case <-ticker.C:
			if duration > 0 && time.Now().After(deadline) {
				slog.Info("Duration reached", "total_sent", sent)
				return sent, nil
			}
			ev := gen.Next()
			if err := pub.Publish(ctx, ev); err != nil {
				return sent, fmt.Errorf("failed to publish %s: %w", ev.Type, err)
			}
			sent++
			changes++
		}
	}
}
