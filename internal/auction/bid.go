// internal/auction/bid.go
package auction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// SubmitBid validates and atomically applies a bid against the current lot.
//
// The minimum acceptable amount is the standing bid plus BidIncrement, or the
// lot's tier floor when no bid stands yet. Affordability is checked here and
// re-checked at debit time; the write itself is compare-and-set against the
// bid the caller last saw, so two simultaneous bidders cannot both win the
// same amount. Losing that race surfaces as ErrStaleState.
func (e *Engine) SubmitBid(ctx context.Context, auctionID, userID uuid.UUID, amount int) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusActive || a.CurrentLotID == nil {
		return ErrInactiveAuction
	}

	min, err := e.minimumBid(ctx, a)
	if err != nil {
		return err
	}
	if amount < min {
		return fmt.Errorf("%w: minimum acceptable bid is %d GC", ErrBidTooLow, min)
	}

	p, err := e.participant(ctx, auctionID, userID)
	if err != nil {
		return err
	}
	if p.RemainingBudget < amount {
		return fmt.Errorf("%w: %d GC remaining", ErrInsufficientBudget, p.RemainingBudget)
	}

	applied, err := e.store.ApplyBid(ctx, auctionID, userID, amount, a.CurrentBid)
	if err != nil {
		return err
	}
	if !applied {
		return ErrStaleState
	}

	e.log.WithFields(map[string]interface{}{
		"auction": auctionID, "user": userID, "amount": amount,
	}).Info("bid accepted")
	e.publish(ctx, Event{
		Type:      EventBidPlaced,
		AuctionID: auctionID,
		Payload: map[string]interface{}{
			"user_id": userID.String(),
			"lot_id":  a.CurrentLotID.String(),
			"amount":  amount,
		},
	})
	return nil
}

// SubmitPass idempotently records the participant's vote to decline the
// current lot. Once every participant has passed with no intervening bid,
// the lot advances as a skip; otherwise the tally is updated and the visible
// countdown restarts without touching the standing bid.
func (e *Engine) SubmitPass(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusActive || a.CurrentLotID == nil {
		return ErrInactiveAuction
	}
	if _, err := e.participant(ctx, auctionID, userID); err != nil {
		return err
	}
	lotID := *a.CurrentLotID

	if err := e.store.RecordPassVote(ctx, auctionID, lotID, userID); err != nil {
		return err
	}
	votes, err := e.store.CountPassVotes(ctx, auctionID, lotID)
	if err != nil {
		return err
	}
	participants, err := e.store.ListParticipants(ctx, auctionID)
	if err != nil {
		return err
	}

	if len(participants) > 0 && votes >= len(participants) {
		e.log.WithFields(map[string]interface{}{
			"auction": auctionID, "lot": lotID, "votes": votes,
		}).Info("all participants passed, skipping lot")
		return e.advanceAsSkip(ctx, a)
	}

	if err := e.store.SetPassVoteCount(ctx, auctionID, lotID, votes); err != nil {
		return err
	}
	e.publish(ctx, Event{
		Type:      EventPassRecorded,
		AuctionID: auctionID,
		Payload: map[string]interface{}{
			"lot_id": lotID.String(),
			"votes":  votes,
			"of":     len(participants),
		},
	})
	return nil
}

// minimumBid computes the floor for the next acceptable bid on the current lot.
func (e *Engine) minimumBid(ctx context.Context, a *models.Auction) (int, error) {
	if a.CurrentBid > 0 {
		return a.CurrentBid + BidIncrement, nil
	}
	lot, err := e.store.GetPlayer(ctx, *a.CurrentLotID)
	if err != nil {
		return 0, err
	}
	return lot.Tier().MinimumBid(), nil
}

func (e *Engine) participant(ctx context.Context, auctionID, userID uuid.UUID) (*models.Participant, error) {
	p, err := e.store.GetParticipant(ctx, auctionID, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotParticipant
	}
	return p, err
}
