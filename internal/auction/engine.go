// internal/auction/engine.go
package auction

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// BidIncrement is the fixed step a new bid must clear over the standing bid.
const BidIncrement = 5

// DefaultLotDuration is how long each lot stays open without bid or pass
// activity before any observing client may resolve it.
const DefaultLotDuration = 30 * time.Second

// Engine drives the lot lifecycle for every auction: bid and pass intake,
// timer-expiry resolution, settlement, and host transitions. It holds no
// auction state of its own; coordination between the many connected clients
// happens entirely through the Store's atomic operations, so any number of
// Engine instances may serve the same auction.
type Engine struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger

	// LotDuration is the fixed countdown D for each lot.
	LotDuration time.Duration
}

// NewEngine wires an engine to its store and publish hook. The lot duration
// comes from the LOT_TIMER env var (a Go duration string) when set.
func NewEngine(store Store, notifier Notifier, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	e := &Engine{
		store:       store,
		notifier:    notifier,
		log:         logger,
		LotDuration: DefaultLotDuration,
	}
	if raw := os.Getenv("LOT_TIMER"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			e.LotDuration = d
		} else {
			logger.Warnf("ignoring invalid LOT_TIMER %q", raw)
		}
	}
	return e
}

// publish sends one event per committed mutation. A nil notifier is allowed
// (tests, offline tooling).
func (e *Engine) publish(ctx context.Context, ev Event) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(ctx, ev)
}
