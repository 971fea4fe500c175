// internal/models/auction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the closed set of lifecycle states for an auction.
// Every mutating operation checks the status it is allowed to run in;
// there are no other states.
type AuctionStatus string

const (
	StatusPending   AuctionStatus = "pending"
	StatusActive    AuctionStatus = "active"
	StatusPaused    AuctionStatus = "paused"
	StatusCompleted AuctionStatus = "completed"
)

// Auction is the shared aggregate every connected client observes and
// mutates through the store. The countdown is never stored; clients derive
// remaining time from LastEventTime and the configured lot duration.
//
// Invariants: CurrentBid > 0 implies CurrentBidderID is set, and a nil
// CurrentLotID implies CurrentBid == 0.
type Auction struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	HostID uuid.UUID     `json:"host_id"`
	Status AuctionStatus `json:"status"`

	BudgetPerParticipant int `json:"budget_per_participant"`

	CurrentLotID    *uuid.UUID `json:"current_lot_id"`
	CurrentBid      int        `json:"current_bid"`
	CurrentBidderID *uuid.UUID `json:"current_bidder_id"`
	PassVoteCount   int        `json:"pass_vote_count"`

	// LastEventTime anchors the visible countdown for the current lot.
	LastEventTime time.Time `json:"last_event_time"`

	CompletedLots int `json:"completed_lots"`
	SkippedLots   int `json:"skipped_lots"`

	CreatedAt time.Time `json:"created_at"`
}

// IsTerminal reports whether no further lot activity is possible.
func (a *Auction) IsTerminal() bool {
	return a.Status == StatusCompleted
}
