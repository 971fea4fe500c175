// internal/database/player.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghantafc/auction/internal/auction"
	"github.com/ghantafc/auction/internal/models"
)

func (s *Store) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	var p models.Player
	q := `
		SELECT id, name, position, ovr, pac, sho, pas, dri, def, phy, nation, league, club
		FROM players WHERE id = $1
	`
	err := s.pool.QueryRow(ctx, q, playerID).Scan(
		&p.ID, &p.Name, &p.Position, &p.OVR,
		&p.Pace, &p.Shooting, &p.Passing, &p.Dribbling, &p.Defending, &p.Physical,
		&p.Nation, &p.League, &p.Club,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

// EligibleLotIDs enumerates the candidate pool: lots selected for this
// auction minus lots already won minus lots skipped twice.
func (s *Store) EligibleLotIDs(ctx context.Context, auctionID uuid.UUID) ([]uuid.UUID, error) {
	q := `
		SELECT al.player_id
		FROM auction_lots al
		WHERE al.auction_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM auction_winners w
			WHERE w.auction_id = al.auction_id AND w.lot_id = al.player_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM auction_skips sk
			WHERE sk.auction_id = al.auction_id AND sk.lot_id = al.player_id AND sk.skip_count >= 2
		  )
	`
	rows, err := s.pool.Query(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CountLots(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM auction_lots WHERE auction_id = $1`, auctionID).Scan(&n)
	return n, err
}
