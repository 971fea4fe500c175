// internal/models/records.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PassVote records one participant declining the current lot. The
// (auction, lot, user) triple is unique; re-voting is a no-op.
type PassVote struct {
	AuctionID uuid.UUID `json:"auction_id"`
	LotID     uuid.UUID `json:"lot_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// SkipRecord counts how many times a lot has been retired without a winner.
// A lot reaching two skips is permanently excluded from selection.
type SkipRecord struct {
	AuctionID uuid.UUID `json:"auction_id"`
	LotID     uuid.UUID `json:"lot_id"`
	SkipCount int       `json:"skip_count"`
}

// WinnerRecord is the single source of truth that a lot has been settled.
// At most one row ever exists per (auction, lot).
type WinnerRecord struct {
	AuctionID  uuid.UUID `json:"auction_id"`
	LotID      uuid.UUID `json:"lot_id"`
	WinnerID   uuid.UUID `json:"winner_id"`
	WinningBid int       `json:"winning_bid"`
	WonAt      time.Time `json:"won_at"`
}

// AuctionEventRecord is the archival shape the historian drains from the
// Redis queue into Postgres.
type AuctionEventRecord struct {
	AuctionID uuid.UUID              `json:"auction_id"`
	EventType string                 `json:"event_type"`
	ActorID   uuid.UUID              `json:"actor_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
}
