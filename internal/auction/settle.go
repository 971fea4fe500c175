// internal/auction/settle.go
package auction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// settle turns the standing bid into a durable WinnerRecord plus an
// idempotent budget debit, then advances to the next lot.
//
// The winner insert is guarded on the countdown anchor the caller read and
// doubles as the settlement lock. A refused insert means one of two things:
// another caller already settled this lot, in which case this attempt
// degrades to a plain advance, or a bid or pass landed after the caller's
// read, in which case the lot is still live and nothing here may touch it.
// The debit re-checks affordability at the point of charge, closing the
// race between "validated as affordable" and "charged".
func (e *Engine) settle(ctx context.Context, a *models.Auction) error {
	rec := models.WinnerRecord{
		AuctionID:  a.ID,
		LotID:      *a.CurrentLotID,
		WinnerID:   *a.CurrentBidderID,
		WinningBid: a.CurrentBid,
	}

	inserted, err := e.store.InsertWinner(ctx, rec, a.LastEventTime)
	if err != nil {
		return err
	}
	if !inserted {
		settled, err := e.store.HasWinner(ctx, a.ID, rec.LotID)
		if err != nil {
			return err
		}
		if settled {
			_, err := e.advance(ctx, a, LotWon, uuid.Nil)
			return err
		}
		// Bid or pass activity re-anchored the countdown after the caller's
		// read. The lot is still running on the fresh anchor.
		return nil
	}

	debited, err := e.store.DebitBudget(ctx, a.ID, rec.WinnerID, rec.WinningBid)
	if err != nil {
		return err
	}
	if !debited {
		// The WinnerRecord exists but the charge did not apply. The lot is
		// terminal regardless; surface the inconsistency instead of masking
		// it as a soft failure.
		e.log.WithFields(map[string]interface{}{
			"auction": a.ID, "lot": rec.LotID, "winner": rec.WinnerID, "bid": rec.WinningBid,
		}).Error("settlement debit failed after winner insert")
		if _, advErr := e.advance(ctx, a, LotWon, uuid.Nil); advErr != nil {
			return advErr
		}
		return fmt.Errorf("%w: lot %s winner %s bid %d", ErrUnpaidSettlement, rec.LotID, rec.WinnerID, rec.WinningBid)
	}

	e.log.WithFields(map[string]interface{}{
		"auction": a.ID, "lot": rec.LotID, "winner": rec.WinnerID, "bid": rec.WinningBid,
	}).Info("lot settled")
	e.publish(ctx, Event{
		Type:      EventLotSettled,
		AuctionID: a.ID,
		Payload: map[string]interface{}{
			"lot_id":      rec.LotID.String(),
			"winner_id":   rec.WinnerID.String(),
			"winning_bid": rec.WinningBid,
		},
	})
	_, err = e.advance(ctx, a, LotWon, uuid.Nil)
	return err
}
