// internal/auction/snapshot.go
package auction

import (
	"context"

	"github.com/google/uuid"
	"github.com/ghantafc/auction/internal/models"
)

// PoolStats summarizes the lot pool for the auction details view.
type PoolStats struct {
	TotalLots     int `json:"total_lots"`
	CompletedLots int `json:"completed_lots"`
	SkippedLots   int `json:"skipped_lots"`
	AvailableLots int `json:"available_lots"`
}

// CurrentLot carries the player up for bid plus its vote and skip history.
type CurrentLot struct {
	Player    *models.Player `json:"player"`
	SkipCount int            `json:"skip_count"`
	PassVotes int            `json:"pass_votes"`
}

// Snapshot is the full state a client needs on initial load or reconnect.
// It deliberately carries no "seconds remaining": clients derive the
// countdown from the auction's LastEventTime and LotDurationSec, so a stale
// local timer can never outlive a refetch.
type Snapshot struct {
	Auction        *models.Auction       `json:"auction"`
	Participants   []models.Participant  `json:"participants"`
	CurrentLot     *CurrentLot           `json:"current_lot,omitempty"`
	Winners        []models.WinnerRecord `json:"winners"`
	Stats          PoolStats             `json:"stats"`
	LotDurationSec int                   `json:"lot_duration_sec"`
}

// Snapshot assembles the current auction aggregate, its participants, the
// current lot's tally, and the pool statistics in one read.
func (e *Engine) Snapshot(ctx context.Context, auctionID uuid.UUID) (*Snapshot, error) {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	participants, err := e.store.ListParticipants(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	winners, err := e.store.ListWinners(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	total, err := e.store.CountLots(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	eligible, err := e.store.EligibleLotIDs(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Auction:      a,
		Participants: participants,
		Winners:      winners,
		Stats: PoolStats{
			TotalLots:     total,
			CompletedLots: a.CompletedLots,
			SkippedLots:   a.SkippedLots,
			AvailableLots: len(eligible),
		},
		LotDurationSec: int(e.LotDuration.Seconds()),
	}

	if a.CurrentLotID != nil {
		player, err := e.store.GetPlayer(ctx, *a.CurrentLotID)
		if err != nil {
			return nil, err
		}
		skips, err := e.store.GetSkipCount(ctx, auctionID, *a.CurrentLotID)
		if err != nil {
			return nil, err
		}
		votes, err := e.store.CountPassVotes(ctx, auctionID, *a.CurrentLotID)
		if err != nil {
			return nil, err
		}
		snap.CurrentLot = &CurrentLot{Player: player, SkipCount: skips, PassVotes: votes}
	}
	return snap, nil
}
