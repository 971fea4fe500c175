// internal/auction/store.go
package auction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// ErrNotFound is returned by Store implementations when a keyed record
// does not exist.
var ErrNotFound = errors.New("record not found")

// LotOutcome says how the previous lot was retired when advancing.
type LotOutcome int

const (
	LotSkipped LotOutcome = iota
	LotWon
)

// Store is the durable keyed storage the engine coordinates through. No
// single process owns an auction; an unbounded number of clients mutate the
// same aggregate concurrently, so every money-moving or lot-resolving method
// is a single atomic operation whose guard encodes the expected prior state.
// Methods returning a bool report whether the guarded write applied; a false
// result is an expected concurrency outcome, not an error.
type Store interface {
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	GetParticipant(ctx context.Context, auctionID, userID uuid.UUID) (*models.Participant, error)
	ListParticipants(ctx context.Context, auctionID uuid.UUID) ([]models.Participant, error)
	GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error)

	ListWinners(ctx context.Context, auctionID uuid.UUID) ([]models.WinnerRecord, error)
	HasWinner(ctx context.Context, auctionID, lotID uuid.UUID) (bool, error)
	GetSkipCount(ctx context.Context, auctionID, lotID uuid.UUID) (int, error)

	// EligibleLotIDs enumerates the candidate pool: lots selected for the
	// auction, minus lots with a WinnerRecord, minus lots skipped twice.
	EligibleLotIDs(ctx context.Context, auctionID uuid.UUID) ([]uuid.UUID, error)
	CountLots(ctx context.Context, auctionID uuid.UUID) (int, error)

	// ApplyBid installs a new highest bid iff the auction is active, the
	// current lot has no WinnerRecord yet, and the current bid still equals
	// expectedBid. On success it also zeroes the pass tally, clears the
	// current lot's pass votes, and re-anchors the countdown.
	ApplyBid(ctx context.Context, auctionID, userID uuid.UUID, amount, expectedBid int) (bool, error)

	// RecordPassVote upserts a (auction, lot, user) vote; repeats are no-ops.
	RecordPassVote(ctx context.Context, auctionID, lotID, userID uuid.UUID) error
	CountPassVotes(ctx context.Context, auctionID, lotID uuid.UUID) (int, error)

	// SetPassVoteCount writes the tally and re-anchors the countdown iff
	// lotID is still the current lot; a stale tally for an advanced lot is
	// dropped.
	SetPassVoteCount(ctx context.Context, auctionID, lotID uuid.UUID, count int) error

	// InsertWinner writes the WinnerRecord iff lotID is still the current
	// lot and the countdown anchor still equals what the caller read; false
	// means either another caller settled first or the aggregate moved on.
	InsertWinner(ctx context.Context, rec models.WinnerRecord, anchor time.Time) (bool, error)

	// DebitBudget subtracts amount from the participant's remaining budget,
	// guarded so the balance can never go below zero.
	DebitBudget(ctx context.Context, auctionID, userID uuid.UUID, amount int) (bool, error)

	// AdvanceLot swaps the current lot iff both prevLot and the countdown
	// anchor still match the caller's read; any interleaved bid, pass, or
	// rival advance re-anchors and voids the swap. On apply it clears bid
	// state and prevLot's pass votes, bumps the outcome counter, and counts
	// the skip when the outcome is LotSkipped. nextLot == uuid.Nil
	// completes the auction instead.
	AdvanceLot(ctx context.Context, auctionID, prevLot, nextLot uuid.UUID, anchor time.Time, outcome LotOutcome) (bool, error)

	// Host transitions, each guarded on the allowed source status.
	StartAuction(ctx context.Context, auctionID, firstLot uuid.UUID) (bool, error)
	PauseAuction(ctx context.Context, auctionID uuid.UUID) (bool, error)
	ResumeAuction(ctx context.Context, auctionID uuid.UUID) (bool, error)
	EndAuction(ctx context.Context, auctionID uuid.UUID) (bool, error)

	// ResetForRestart clears all winner, skip, and pass-vote rows plus the
	// completed/skipped counters, returning every selected lot to
	// eligibility.
	ResetForRestart(ctx context.Context, auctionID uuid.UUID) error
}
