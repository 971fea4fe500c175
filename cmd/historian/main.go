// cmd/historian/main.go is an asynchronous historian service that pops auction
// event data from a Redis queue and persists it to a PostgreSQL database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/ghantafc/auction/internal/cache"
	"github.com/ghantafc/auction/internal/database"
	"github.com/ghantafc/auction/internal/models"
)

// HistorianService drains the Redis event queue in batches and flushes the
// accumulated records into the auction_events table. It also watches for
// auctions that have gone quiet mid-round and pauses them so a lot cannot
// stay live indefinitely after the host disappears.
type HistorianService struct {
	redisClient *redis.Client
	store       *database.Store
	batchSize   int
	flushDelay  time.Duration
	inactivity  time.Duration

	batchMu  sync.Mutex
	batch    []models.AuctionEventRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment variables
// or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("AUCTION_INACTIVITY_TIMEOUT_SEC", 600)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]models.AuctionEventRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the drain and inactivity loops,
// blocking until the context is cancelled.
func (hs *HistorianService) Run() {
	database.ConnectDB()
	hs.store = database.NewStore(database.DB)

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("auction-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatch()
	log.Println("auction-historian shutting down.")
}

// readRedisLoop continuously pops event records from the Redis queue,
// accumulating them into the batch and flushing on a timer.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORIAN_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatch()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record models.AuctionEventRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid event record: %v\n", err)
				continue
			}
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes once the
// threshold is reached.
func (hs *HistorianService) appendToBatch(record models.AuctionEventRecord) {
	hs.batchMu.Lock()
	batch := hs.takeBatchLocked(record)
	hs.batchMu.Unlock()

	if batch != nil {
		hs.persist(batch)
	}
}

// takeBatchLocked appends the record and, when the batch is full, hands the
// caller the drained slice. Must be called with batchMu held.
func (hs *HistorianService) takeBatchLocked(record models.AuctionEventRecord) []models.AuctionEventRecord {
	hs.batch = append(hs.batch, record)
	if len(hs.batch) < hs.batchSize {
		return nil
	}
	drained := make([]models.AuctionEventRecord, len(hs.batch))
	copy(drained, hs.batch)
	hs.batch = hs.batch[:0]
	return drained
}

// flushBatch drains whatever is currently batched and writes it to Postgres.
func (hs *HistorianService) flushBatch() {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	drained := make([]models.AuctionEventRecord, len(hs.batch))
	copy(drained, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	hs.persist(drained)
}

func (hs *HistorianService) persist(records []models.AuctionEventRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := hs.store.ArchiveEvents(ctx, records); err != nil {
		log.Printf("[ERROR] ArchiveEvents: %v\n", err)
		return
	}
	log.Printf("Flushed %d events to DB.\n", len(records))
}

// inactivityLoop periodically pauses active auctions whose last event is
// older than the configured threshold.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			n, err := hs.store.PauseStaleAuctions(ctx, hs.inactivity)
			cancel()
			if err != nil {
				log.Printf("[ERROR] PauseStaleAuctions: %v\n", err)
				continue
			}
			if n > 0 {
				log.Printf("Paused %d stale auctions.\n", n)
			}
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	hs := NewHistorianService()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		hs.cancelFn()
	}()

	hs.Run()
}
