// internal/database/auction.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghantafc/auction/internal/auction"
	"github.com/ghantafc/auction/internal/models"
)

const auctionColumns = `
	id, name, host_id, status, budget_per_participant,
	current_lot_id, current_bid, current_bidder_id, pass_vote_count,
	last_event_time, completed_lots, skipped_lots, created_at
`

// CreateAuction inserts a pending auction plus its selected lot pool.
func (s *Store) CreateAuction(ctx context.Context, a *models.Auction, lotIDs []uuid.UUID) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Status = models.StatusPending
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO auctions (id, name, host_id, status, budget_per_participant, last_event_time)
			VALUES ($1, $2, $3, $4, $5, now())
		`
		if _, err := tx.Exec(ctx, q, a.ID, a.Name, a.HostID, a.Status, a.BudgetPerParticipant); err != nil {
			return err
		}
		for _, lotID := range lotIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO auction_lots (auction_id, player_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				a.ID, lotID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var a models.Auction
	q := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	err := s.pool.QueryRow(ctx, q, auctionID).Scan(
		&a.ID, &a.Name, &a.HostID, &a.Status, &a.BudgetPerParticipant,
		&a.CurrentLotID, &a.CurrentBid, &a.CurrentBidderID, &a.PassVoteCount,
		&a.LastEventTime, &a.CompletedLots, &a.SkippedLots, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get auction: %w", err)
	}
	return &a, nil
}

// ApplyBid is the optimistic-concurrency bid write: it only lands while the
// auction is active, the current lot has not been settled, and the current
// bid still equals what the caller last saw. On success the current lot's
// pass votes are cleared in the same transaction and the countdown
// re-anchors.
func (s *Store) ApplyBid(ctx context.Context, auctionID, userID uuid.UUID, amount, expectedBid int) (bool, error) {
	applied := false
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE auctions
			SET current_bid = $3, current_bidder_id = $4,
			    pass_vote_count = 0, last_event_time = now()
			WHERE id = $1 AND status = 'active'
			  AND current_lot_id IS NOT NULL AND current_bid = $2
			  AND NOT EXISTS (
			      SELECT 1 FROM auction_winners w
			      WHERE w.auction_id = auctions.id AND w.lot_id = auctions.current_lot_id
			  )
		`
		tag, err := tx.Exec(ctx, q, auctionID, expectedBid, amount, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		_, err = tx.Exec(ctx, `
			DELETE FROM auction_pass_votes
			WHERE auction_id = $1
			  AND lot_id = (SELECT current_lot_id FROM auctions WHERE id = $1)
		`, auctionID)
		return err
	})
	return applied, err
}

// SetPassVoteCount stamps the visible tally and re-anchors the countdown,
// but only while lotID is still the current lot. A tally computed against a
// lot the auction has already moved past is dropped on the floor.
func (s *Store) SetPassVoteCount(ctx context.Context, auctionID, lotID uuid.UUID, count int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE auctions SET pass_vote_count = $3, last_event_time = now()
		WHERE id = $1 AND current_lot_id = $2
	`, auctionID, lotID, count)
	return err
}

// AdvanceLot swaps the current lot iff it still equals prevLot and the
// countdown anchor still equals what the caller read, so any bid, pass, or
// rival advance that landed in between voids the swap. nextLot == uuid.Nil
// marks pool exhaustion and completes the auction in the same statement.
// When the swap applies, prevLot's pass votes are cleared and, for a
// skipped outcome, its skip count goes up inside the same transaction.
func (s *Store) AdvanceLot(ctx context.Context, auctionID, prevLot, nextLot uuid.UUID, anchor time.Time, outcome auction.LotOutcome) (bool, error) {
	var next *uuid.UUID
	if nextLot != uuid.Nil {
		next = &nextLot
	}
	wonDelta, skipDelta := 0, 0
	switch outcome {
	case auction.LotWon:
		wonDelta = 1
	case auction.LotSkipped:
		skipDelta = 1
	}
	applied := false
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE auctions
			SET current_lot_id = $3,
			    current_bid = 0, current_bidder_id = NULL, pass_vote_count = 0,
			    last_event_time = now(),
			    completed_lots = completed_lots + $5,
			    skipped_lots = skipped_lots + $6,
			    status = CASE WHEN $3::uuid IS NULL THEN 'completed' ELSE status END
			WHERE id = $1 AND current_lot_id = $2 AND last_event_time = $4
		`
		tag, err := tx.Exec(ctx, q, auctionID, prevLot, next, anchor, wonDelta, skipDelta)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		if _, err := tx.Exec(ctx,
			`DELETE FROM auction_pass_votes WHERE auction_id = $1 AND lot_id = $2`,
			auctionID, prevLot,
		); err != nil {
			return err
		}
		if outcome == auction.LotSkipped {
			_, err = tx.Exec(ctx, `
				INSERT INTO auction_skips (auction_id, lot_id, skip_count)
				VALUES ($1, $2, 1)
				ON CONFLICT (auction_id, lot_id)
				DO UPDATE SET skip_count = auction_skips.skip_count + 1
			`, auctionID, prevLot)
			return err
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("advance lot: %w", err)
	}
	return applied, nil
}

func (s *Store) StartAuction(ctx context.Context, auctionID, firstLot uuid.UUID) (bool, error) {
	q := `
		UPDATE auctions
		SET status = 'active', current_lot_id = $2,
		    current_bid = 0, current_bidder_id = NULL, pass_vote_count = 0,
		    last_event_time = now()
		WHERE id = $1 AND status IN ('pending', 'completed')
	`
	tag, err := s.pool.Exec(ctx, q, auctionID, firstLot)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PauseAuction keeps last_event_time untouched so the countdown is frozen
// rather than consumed while paused.
func (s *Store) PauseAuction(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE auctions SET status = 'paused' WHERE id = $1 AND status = 'active'`, auctionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PauseStaleAuctions pauses active auctions whose last event is older than
// the given threshold. Returns how many rows were paused.
func (s *Store) PauseStaleAuctions(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE auctions SET status = 'paused'
		WHERE status = 'active' AND last_event_time < now() - $1::interval
	`, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ResumeAuction(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE auctions SET status = 'active', last_event_time = now()
		WHERE id = $1 AND status = 'paused'
	`, auctionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) EndAuction(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	q := `
		UPDATE auctions
		SET status = 'completed',
		    current_lot_id = NULL, current_bid = 0,
		    current_bidder_id = NULL, pass_vote_count = 0
		WHERE id = $1 AND status <> 'completed'
	`
	tag, err := s.pool.Exec(ctx, q, auctionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ResetForRestart wipes the auction's winner, skip, and pass-vote records
// plus the counters. The lot pool itself is untouched: clearing the
// exclusion records returns every selected lot to eligibility.
func (s *Store) ResetForRestart(ctx context.Context, auctionID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM auction_winners WHERE auction_id = $1`,
			`DELETE FROM auction_skips WHERE auction_id = $1`,
			`DELETE FROM auction_pass_votes WHERE auction_id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, auctionID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			UPDATE auctions SET completed_lots = 0, skipped_lots = 0, pass_vote_count = 0
			WHERE id = $1
		`, auctionID)
		return err
	})
}
