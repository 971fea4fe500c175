// internal/handlers/auction.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghantafc/auction/internal/models"
)

// CreateAuctionHandler creates a pending auction with its selected lot pool.
// The caller becomes the host and is joined as the first participant.
func (s *Server) CreateAuctionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name                 string      `json:"name"`
		BudgetPerParticipant int         `json:"budget_per_participant"`
		LotIDs               []uuid.UUID `json:"lot_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.BudgetPerParticipant <= 0 || len(req.LotIDs) == 0 {
		http.Error(w, "name, budget_per_participant and lot_ids are required", http.StatusBadRequest)
		return
	}

	a := &models.Auction{
		Name:                 req.Name,
		HostID:               userID,
		BudgetPerParticipant: req.BudgetPerParticipant,
	}
	if err := s.Store.CreateAuction(r.Context(), a, req.LotIDs); err != nil {
		s.Log.Errorf("create auction: %v", err)
		http.Error(w, "error creating auction", http.StatusInternalServerError)
		return
	}
	if err := s.Store.JoinAuction(r.Context(), a.ID, userID); err != nil {
		s.Log.Errorf("join own auction: %v", err)
		http.Error(w, "error joining auction", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// JoinAuctionHandler adds the caller as a participant with a fresh budget.
func (s *Server) JoinAuctionHandler(w http.ResponseWriter, r *http.Request) {
	userID, auctionID, ok := s.userAndAuction(w, r)
	if !ok {
		return
	}
	if err := s.Store.JoinAuction(r.Context(), auctionID, userID); err != nil {
		s.Log.Errorf("join auction: %v", err)
		http.Error(w, "error joining auction", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SnapshotHandler returns the full auction state for initial load or
// reconnect. Reconnecting clients must discard any local countdown and
// re-derive it from this response.
func (s *Server) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentUser(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	auctionID, err := uuid.Parse(r.URL.Query().Get("auction_id"))
	if err != nil {
		http.Error(w, "invalid auction_id", http.StatusBadRequest)
		return
	}
	snap, err := s.Engine.Snapshot(r.Context(), auctionID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// BidHandler submits a bid on the current lot.
func (s *Server) BidHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		AuctionID uuid.UUID `json:"auction_id"`
		Amount    int       `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.Engine.SubmitBid(r.Context(), req.AuctionID, userID, req.Amount); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PassHandler records the caller's vote to decline the current lot.
func (s *Server) PassHandler(w http.ResponseWriter, r *http.Request) {
	userID, auctionID, ok := s.userAndAuction(w, r)
	if !ok {
		return
	}
	if err := s.Engine.SubmitPass(r.Context(), auctionID, userID); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveHandler is the timer-expiry trigger. Any observing client may call
// it once its derived countdown reaches zero; racing calls converge.
func (s *Server) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	_, auctionID, ok := s.userAndAuction(w, r)
	if !ok {
		return
	}
	if err := s.Engine.ResolveLot(r.Context(), auctionID); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HostActionHandler dispatches a host-only transition.
func (s *Server) HostActionHandler(action func(ctx context.Context, auctionID, userID uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, auctionID, ok := s.userAndAuction(w, r)
		if !ok {
			return
		}
		if err := action(r.Context(), auctionID, userID); err != nil {
			s.writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// userAndAuction decodes the common {auction_id} payload plus the caller.
func (s *Server) userAndAuction(w http.ResponseWriter, r *http.Request) (userID, auctionID uuid.UUID, ok bool) {
	userID, err := s.currentUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	var req struct {
		AuctionID uuid.UUID `json:"auction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AuctionID == uuid.Nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, req.AuctionID, true
}
