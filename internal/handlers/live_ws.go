// internal/handlers/live_ws.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ghantafc/auction/internal/cache"
	"github.com/ghantafc/auction/internal/middleware"
)

// BadSubprotocolError is the close code sent to clients that connected with
// an unsupported subprotocol.
const BadSubprotocolError = 3000

// livenessPeriod is how often the server pings a feed connection. A client
// that misses pings is disconnected and must refetch the snapshot on
// reconnect instead of resuming a stale countdown.
const livenessPeriod = 30 * time.Second

// LiveWSHandler upgrades the connection to the auction's change feed. The
// server subscribes to the auction's Redis channel and forwards every event
// verbatim; clients are expected to refetch the snapshot per event rather
// than apply diffs.
func (s *Server) LiveWSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/auction/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing auction_id in path (/auction/ws/{auction_id})", http.StatusBadRequest)
			return
		}
		auctionID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid auction_id format", http.StatusBadRequest)
			return
		}
		if _, err := s.Store.GetAuction(r.Context(), auctionID); err != nil {
			http.Error(w, "auction not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"auction"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			s.Log.Warnf("websocket accept error for auction %s: %v", auctionID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "auction" {
			c.Close(BadSubprotocolError, "client must speak the auction subprotocol")
			return
		}

		userID, err := s.currentUser(r)
		if err != nil {
			c.Close(websocket.StatusPolicyViolation, "authentication failed")
			return
		}
		middleware.LogWebSocketConnect(s.Log, r.RemoteAddr, r.URL.Path)
		s.Log.Infof("user %s subscribed to auction %s feed", userID, auctionID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub := cache.Rdb.Subscribe(ctx, cache.EventChannel(auctionID))
		defer sub.Close()
		events := sub.Channel()

		// Read loop exists only to detect the client going away.
		go func() {
			defer cancel()
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(livenessPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, ctx.Err())
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				if err := c.Write(ctx, websocket.MessageText, []byte(msg.Payload)); err != nil {
					s.Log.Warnf("feed write failed for user %s: %v", userID, err)
					return
				}
			case <-ticker.C:
				if err := c.Ping(ctx); err != nil {
					middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
					return
				}
			}
		}
	}
}
