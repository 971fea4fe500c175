// internal/database/participant.go
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

// JoinAuction creates the participant row with both budgets set to the
// auction's per-participant allowance. Re-joining is a no-op so a reconnect
// can never reset a spent budget.
func (s *Store) JoinAuction(ctx context.Context, auctionID, userID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO auction_participants (auction_id, user_id, initial_budget, remaining_budget)
			SELECT a.id, $2, a.budget_per_participant, a.budget_per_participant
			FROM auctions a WHERE a.id = $1
			ON CONFLICT (auction_id, user_id) DO NOTHING
		`
		_, err := tx.Exec(ctx, q, auctionID, userID)
		return err
	})
}

func (s *Store) GetParticipant(ctx context.Context, auctionID, userID uuid.UUID) (*models.Participant, error) {
	var p models.Participant
	q := `
		SELECT auction_id, user_id, initial_budget, remaining_budget, lots_won, joined_at
		FROM auction_participants
		WHERE auction_id = $1 AND user_id = $2
	`
	err := s.pool.QueryRow(ctx, q, auctionID, userID).Scan(
		&p.AuctionID, &p.UserID, &p.InitialBudget, &p.RemainingBudget, &p.LotsWon, &p.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

func (s *Store) ListParticipants(ctx context.Context, auctionID uuid.UUID) ([]models.Participant, error) {
	q := `
		SELECT p.auction_id, p.user_id, p.initial_budget, p.remaining_budget, p.lots_won, p.joined_at,
		       u.username
		FROM auction_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.auction_id = $1
		ORDER BY p.joined_at
	`
	rows, err := s.pool.Query(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var username string
		if err := rows.Scan(
			&p.AuctionID, &p.UserID, &p.InitialBudget, &p.RemainingBudget, &p.LotsWon, &p.JoinedAt,
			&username,
		); err != nil {
			return nil, err
		}
		p.User = &models.User{ID: p.UserID, Username: username}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// DebitBudget charges the winner exactly once, guarded so the balance can
// never go below zero even if validation raced with another settlement.
func (s *Store) DebitBudget(ctx context.Context, auctionID, userID uuid.UUID, amount int) (bool, error) {
	q := `
		UPDATE auction_participants
		SET remaining_budget = remaining_budget - $3, lots_won = lots_won + 1
		WHERE auction_id = $1 AND user_id = $2 AND remaining_budget >= $3
	`
	tag, err := s.pool.Exec(ctx, q, auctionID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("debit budget: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
