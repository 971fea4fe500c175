// internal/models/participant.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a user's membership in one auction, carrying their budget.
// RemainingBudget only ever decreases, exactly once per won lot, and is
// guarded at the store so it can never go below zero.
type Participant struct {
	AuctionID       uuid.UUID `json:"auction_id"`
	UserID          uuid.UUID `json:"user_id"`
	InitialBudget   int       `json:"initial_budget"`
	RemainingBudget int       `json:"remaining_budget"`
	LotsWon         int       `json:"lots_won"`
	JoinedAt        time.Time `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
