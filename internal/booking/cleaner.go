package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/citamed/citamed-scheduling/internal/clock"
)

// Cleaner cancels pending appointments that were never confirmed and whose
// slot start has already passed. It is run periodically by the cleanup
// worker; the store's CAS status update makes concurrent runs harmless.
type Cleaner struct {
	appts Repository
	clk   clock.Clock
}

func NewCleaner(appts Repository, clk clock.Clock) *Cleaner {
	return &Cleaner{appts: appts, clk: clk}
}

func (c *Cleaner) CancelStalePending(ctx context.Context, pendingTTL time.Duration) error {
	now := c.clk.Now()

	stale, err := c.appts.FindStalePending(ctx, now.Add(-pendingTTL), now)
	if err != nil {
		return fmt.Errorf("find stale pending appointments: %w", err)
	}

	for _, appt := range stale {
		if _, err := c.appts.UpdateStatus(ctx, appt.ID, StatusPending, StatusCancelled); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue // already transitioned by someone else
			}
			log.Printf("failed to cancel stale appointment %s: %v", appt.ID, err)
		}
	}

	return nil
}
