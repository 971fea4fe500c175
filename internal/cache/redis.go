// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ghantafc/auction/internal/auction"
	"github.com/ghantafc/auction/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name the historian drains.
var DefaultQueueName = "auction_events"

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// EventChannel is the pub/sub channel carrying one auction's change feed.
func EventChannel(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction_events:%s", auctionID)
}

// Notifier is the Redis-backed ChangeNotifier boundary. Every engine event
// is published to the auction's pub/sub channel for the live WebSocket feed
// and pushed onto the archival queue for the historian. Delivery is best
// effort; a publish failure never blocks the mutation that produced it.
type Notifier struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewNotifier(rdb *redis.Client, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Notifier{rdb: rdb, log: logger}
}

// Publish implements auction.Notifier.
func (n *Notifier) Publish(ctx context.Context, ev auction.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		n.log.Warnf("failed to marshal event %s: %v", ev.Type, err)
		return
	}
	if err := n.rdb.Publish(ctx, EventChannel(ev.AuctionID), data).Err(); err != nil {
		n.log.Warnf("failed to publish event %s for auction %s: %v", ev.Type, ev.AuctionID, err)
	}
	n.enqueueArchive(ctx, ev)
}

// enqueueArchive pushes the archival record onto the historian queue.
func (n *Notifier) enqueueArchive(ctx context.Context, ev auction.Event) {
	rec := models.AuctionEventRecord{
		AuctionID: ev.AuctionID,
		EventType: string(ev.Type),
		Payload:   ev.Payload,
		Timestamp: time.Now().UnixMilli(),
	}
	if raw, ok := ev.Payload["user_id"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			rec.ActorID = id
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		n.log.Warnf("failed to marshal archive record: %v", err)
		return
	}
	queueName := getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
	if err := n.rdb.RPush(ctx, queueName, data).Err(); err != nil {
		n.log.Warnf("failed to RPush to Redis list %q: %v", queueName, err)
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
