// internal/auction/selector.go
package auction

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// maxLotSkips is how many times a lot may be retired without a winner
// before it is permanently excluded from selection.
const maxLotSkips = 2

// nextLot picks the next lot uniformly at random from the eligible pool,
// leaving out exclude when set. An empty pool is the exhaustion signal,
// reported via ok=false rather than an error, and causes the auction to
// complete.
func (e *Engine) nextLot(ctx context.Context, auctionID, exclude uuid.UUID) (uuid.UUID, bool, error) {
	ids, err := e.store.EligibleLotIDs(ctx, auctionID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if exclude != uuid.Nil {
		kept := ids[:0]
		for _, id := range ids {
			if id != exclude {
				kept = append(kept, id)
			}
		}
		ids = kept
	}
	if len(ids) == 0 {
		return uuid.Nil, false, nil
	}
	return ids[rand.Intn(len(ids))], true, nil
}

// advanceAsSkip retires the current lot without a settlement. The skip is
// counted inside the same guarded swap that installs the next lot, so a
// resolver that loses the swap race contributes nothing. When this skip
// would be the lot's last allowed one, the draw leaves it out so the pool
// exhausts instead of re-installing an excluded lot.
func (e *Engine) advanceAsSkip(ctx context.Context, a *models.Auction) error {
	lotID := *a.CurrentLotID
	skips, err := e.store.GetSkipCount(ctx, a.ID, lotID)
	if err != nil {
		return err
	}
	var exclude uuid.UUID
	if skips+1 >= maxLotSkips {
		exclude = lotID
	}
	applied, err := e.advance(ctx, a, LotSkipped, exclude)
	if err != nil || !applied {
		return err
	}
	e.log.WithFields(map[string]interface{}{
		"auction": a.ID, "lot": lotID, "skips": skips + 1,
	}).Info("lot skipped")
	return nil
}

// advance installs the next lot, or completes the auction when the pool is
// exhausted. The swap is guarded on both the lot the caller resolved and
// the countdown anchor it read, so a bid, pass, or rival advance that
// landed in between voids it; a voided swap is an expected concurrency
// outcome, not an error. Both resolution paths, unanimous pass and timer
// expiry, converge here.
func (e *Engine) advance(ctx context.Context, a *models.Auction, outcome LotOutcome, exclude uuid.UUID) (bool, error) {
	prev := *a.CurrentLotID

	next, ok, err := e.nextLot(ctx, a.ID, exclude)
	if err != nil {
		return false, err
	}
	if !ok {
		applied, err := e.store.AdvanceLot(ctx, a.ID, prev, uuid.Nil, a.LastEventTime, outcome)
		if err != nil {
			return false, err
		}
		if applied {
			e.log.WithField("auction", a.ID).Info("lot pool exhausted, auction completed")
			e.publish(ctx, Event{Type: EventAuctionCompleted, AuctionID: a.ID})
		}
		return applied, nil
	}

	applied, err := e.store.AdvanceLot(ctx, a.ID, prev, next, a.LastEventTime, outcome)
	if err != nil {
		return false, err
	}
	if applied {
		e.publish(ctx, Event{
			Type:      EventLotAdvanced,
			AuctionID: a.ID,
			Payload: map[string]interface{}{
				"previous_lot_id": prev.String(),
				"lot_id":          next.String(),
			},
		})
	}
	return applied, nil
}
