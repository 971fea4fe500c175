// internal/auction/timer.go
package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// Remaining derives the time left on the current lot from the server-anchored
// LastEventTime. It is recomputed at every read and never persisted, so clock
// drift between clients cannot desynchronize the deadline.
func (e *Engine) Remaining(a *models.Auction) time.Duration {
	if a.Status != models.StatusActive || a.CurrentLotID == nil {
		return 0
	}
	rem := e.LotDuration - time.Since(a.LastEventTime)
	if rem < 0 {
		return 0
	}
	return rem
}

// ResolveLot retires the current lot once its countdown has expired. Any
// observing client may call it; racing callers converge on a single outcome
// because the WinnerRecord insert and the lot swap are both idempotent.
//
// A standing bid settles; no bids at all skips, exactly like a unanimous
// pass. A lot already settled by another client advances silently.
func (e *Engine) ResolveLot(ctx context.Context, auctionID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusActive || a.CurrentLotID == nil {
		// Paused, completed, or already advanced past the caller's view.
		return nil
	}
	if e.Remaining(a) > 0 {
		// The countdown restarted under a stale client; nothing to resolve.
		return nil
	}

	settled, err := e.store.HasWinner(ctx, a.ID, *a.CurrentLotID)
	if err != nil {
		return err
	}
	if settled {
		_, err := e.advance(ctx, a, LotWon, uuid.Nil)
		return err
	}
	if a.CurrentBid > 0 && a.CurrentBidderID != nil {
		return e.settle(ctx, a)
	}
	return e.advanceAsSkip(ctx, a)
}
