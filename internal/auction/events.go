// internal/auction/events.go
package auction

import (
	"context"

	"github.com/google/uuid"
)

// EventType is an enum-like type for broadcasting auction state changes.
type EventType string

const (
	EventAuctionStarted   EventType = "auction_started"
	EventAuctionPaused    EventType = "auction_paused"
	EventAuctionResumed   EventType = "auction_resumed"
	EventAuctionCompleted EventType = "auction_completed"
	EventBidPlaced        EventType = "bid_placed"
	EventPassRecorded     EventType = "pass_recorded"
	EventLotSettled       EventType = "lot_settled"
	EventLotAdvanced      EventType = "lot_advanced"
)

// Event is published once per committed mutation to the auction aggregate.
// Payloads are not guaranteed to be delta-complete; subscribers should
// refetch the full snapshot rather than apply an incremental diff.
type Event struct {
	Type      EventType              `json:"type"`
	AuctionID uuid.UUID              `json:"auction_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Notifier delivers state-change events to connected clients. The engine
// only needs a publish hook; the transport lives at the boundary.
type Notifier interface {
	Publish(ctx context.Context, ev Event)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Publish(ctx context.Context, ev Event) { f(ctx, ev) }
