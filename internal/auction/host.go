// internal/auction/host.go
package auction

import (
	"context"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// Start moves a pending auction to active and assigns its first lot. Called
// on a completed auction it restarts instead: all winner, skip, and pass
// rows are cleared and the counters reset, so the full lot pool is eligible
// again before the first lot is drawn.
func (e *Engine) Start(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := requireHost(a, userID); err != nil {
		return err
	}
	if a.Status != models.StatusPending && a.Status != models.StatusCompleted {
		return ErrInvalidTransition
	}

	if a.Status == models.StatusCompleted {
		e.log.WithField("auction", auctionID).Info("restarting completed auction")
		if err := e.store.ResetForRestart(ctx, auctionID); err != nil {
			return err
		}
	}

	first, ok, err := e.nextLot(ctx, auctionID, uuid.Nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLotPoolEmpty
	}

	applied, err := e.store.StartAuction(ctx, auctionID, first)
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	e.publish(ctx, Event{
		Type:      EventAuctionStarted,
		AuctionID: auctionID,
		Payload:   map[string]interface{}{"lot_id": first.String()},
	})
	return nil
}

// Pause freezes an active auction without discarding in-progress bid state.
// LastEventTime is preserved so the countdown is frozen, not consumed.
func (e *Engine) Pause(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := requireHost(a, userID); err != nil {
		return err
	}
	applied, err := e.store.PauseAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	e.publish(ctx, Event{Type: EventAuctionPaused, AuctionID: auctionID})
	return nil
}

// Resume returns a paused auction to active, re-anchoring LastEventTime to
// now so the visible countdown restarts without altering the standing bid.
func (e *Engine) Resume(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := requireHost(a, userID); err != nil {
		return err
	}
	applied, err := e.store.ResumeAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	e.publish(ctx, Event{Type: EventAuctionResumed, AuctionID: auctionID})
	return nil
}

// SkipLot is the host's manual skip: identical effect to an automatic skip,
// bypassing both consensus and the timer.
func (e *Engine) SkipLot(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := requireHost(a, userID); err != nil {
		return err
	}
	if a.Status != models.StatusActive || a.CurrentLotID == nil {
		return ErrInactiveAuction
	}
	return e.advanceAsSkip(ctx, a)
}

// End forces the auction to completed from any non-terminal state, clearing
// the in-flight lot fields.
func (e *Engine) End(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := requireHost(a, userID); err != nil {
		return err
	}
	applied, err := e.store.EndAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	e.publish(ctx, Event{Type: EventAuctionCompleted, AuctionID: auctionID})
	return nil
}

func requireHost(a *models.Auction, userID uuid.UUID) error {
	if a.HostID != userID {
		return ErrNotHost
	}
	return nil
}
