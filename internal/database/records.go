// internal/database/records.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghantafc/auction/internal/models"
)

// RecordPassVote upserts the (auction, lot, user) vote; a repeat vote by
// the same user is absorbed by the conflict clause.
func (s *Store) RecordPassVote(ctx context.Context, auctionID, lotID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auction_pass_votes (auction_id, lot_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (auction_id, lot_id, user_id) DO NOTHING
	`, auctionID, lotID, userID)
	return err
}

func (s *Store) CountPassVotes(ctx context.Context, auctionID, lotID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM auction_pass_votes
		WHERE auction_id = $1 AND lot_id = $2
	`, auctionID, lotID).Scan(&n)
	return n, err
}

// InsertWinner writes the terminal settlement record. The insert only
// selects a source row while rec.LotID is still current and the countdown
// anchor still equals what the caller read, so a bid or pass after that
// read refuses the settlement. The primary key on (auction_id, lot_id)
// makes racing settlements collapse into one row; rows-affected tells the
// caller whether it won the race.
func (s *Store) InsertWinner(ctx context.Context, rec models.WinnerRecord, anchor time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO auction_winners (auction_id, lot_id, winner_id, winning_bid, won_at)
		SELECT a.id, $2, $3, $4, now()
		FROM auctions a
		WHERE a.id = $1 AND a.current_lot_id = $2 AND a.last_event_time = $5
		ON CONFLICT (auction_id, lot_id) DO NOTHING
	`, rec.AuctionID, rec.LotID, rec.WinnerID, rec.WinningBid, anchor)
	if err != nil {
		return false, fmt.Errorf("insert winner: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) HasWinner(ctx context.Context, auctionID, lotID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM auction_winners WHERE auction_id = $1 AND lot_id = $2
		)
	`, auctionID, lotID).Scan(&exists)
	return exists, err
}

func (s *Store) ListWinners(ctx context.Context, auctionID uuid.UUID) ([]models.WinnerRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT auction_id, lot_id, winner_id, winning_bid, won_at
		FROM auction_winners WHERE auction_id = $1
		ORDER BY won_at
	`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var winners []models.WinnerRecord
	for rows.Next() {
		var w models.WinnerRecord
		if err := rows.Scan(&w.AuctionID, &w.LotID, &w.WinnerID, &w.WinningBid, &w.WonAt); err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

func (s *Store) GetSkipCount(ctx context.Context, auctionID, lotID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT skip_count FROM auction_skips WHERE auction_id = $1 AND lot_id = $2
	`, auctionID, lotID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// ArchiveEvents batch-inserts drained event records; used by the historian.
func (s *Store) ArchiveEvents(ctx context.Context, records []models.AuctionEventRecord) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			payload, err := json.Marshal(rec.Payload)
			if err != nil {
				return fmt.Errorf("marshal event payload: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO auction_events (auction_id, event_type, actor_id, payload, occurred_at)
				VALUES ($1, $2, $3, $4, to_timestamp($5 / 1000.0))
			`, rec.AuctionID, rec.EventType, rec.ActorID, payload, rec.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
}
