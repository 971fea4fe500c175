// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ghantafc/auction/internal/auction"
	"github.com/ghantafc/auction/internal/auth"
	"github.com/ghantafc/auction/internal/database"
)

// Server bundles the store, the engine, and the logger for all HTTP and
// WebSocket handlers.
type Server struct {
	Log    *logrus.Logger
	Store  *database.Store
	Engine *auction.Engine
}

func NewServer(store *database.Store, engine *auction.Engine, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{Log: logger, Store: store, Engine: engine}
}

// currentUser resolves the authenticated user from the auth_token cookie.
func (s *Server) currentUser(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return uuid.Nil, errors.New("missing auth_token")
	}
	userIDStr, err := auth.AuthenticateJWT(cookie.Value)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(userIDStr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine errors onto HTTP statuses. Validation errors
// surface inline with their message; stale-state conflicts tell the client
// to refetch and retry.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		http.Error(w, "auction not found", http.StatusNotFound)
	case errors.Is(err, auction.ErrNotHost):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, auction.ErrStaleState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auction.ErrInactiveAuction),
		errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrInsufficientBudget),
		errors.Is(err, auction.ErrNotParticipant),
		errors.Is(err, auction.ErrInvalidTransition),
		errors.Is(err, auction.ErrLotPoolEmpty):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.Log.Errorf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
