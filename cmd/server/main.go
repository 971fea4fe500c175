// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/ghantafc/auction/internal/auction"
	"github.com/ghantafc/auction/internal/auth"
	"github.com/ghantafc/auction/internal/cache"
	"github.com/ghantafc/auction/internal/database"
	"github.com/ghantafc/auction/internal/handlers"
	"github.com/ghantafc/auction/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	store := database.NewStore(database.DB)
	notifier := cache.NewNotifier(cache.Rdb, logger)
	engine := auction.NewEngine(store, notifier, logger)
	srv := handlers.NewServer(store, engine, logger)

	mux := http.NewServeMux()
	logged := func(h http.HandlerFunc) http.Handler {
		return middleware.LogMiddleware(logger)(h)
	}

	// user endpoints
	mux.Handle("/user/create", logged(srv.CreateUserHandler))
	mux.Handle("/user/login", logged(srv.LoginHandler))

	// auction lifecycle
	mux.Handle("/auction/create", logged(srv.CreateAuctionHandler))
	mux.Handle("/auction/join", logged(srv.JoinAuctionHandler))
	mux.Handle("/auction/snapshot", logged(srv.SnapshotHandler))

	// participant actions
	mux.Handle("/auction/bid", logged(srv.BidHandler))
	mux.Handle("/auction/pass", logged(srv.PassHandler))
	mux.Handle("/auction/resolve", logged(srv.ResolveHandler))

	// host controls
	mux.Handle("/auction/start", logged(srv.HostActionHandler(engine.Start)))
	mux.Handle("/auction/pause", logged(srv.HostActionHandler(engine.Pause)))
	mux.Handle("/auction/resume", logged(srv.HostActionHandler(engine.Resume)))
	mux.Handle("/auction/skip", logged(srv.HostActionHandler(engine.SkipLot)))
	mux.Handle("/auction/end", logged(srv.HostActionHandler(engine.End)))

	// live change feed
	mux.Handle("/auction/ws/", logged(srv.LiveWSHandler()))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
