// internal/auction/memstore_test.go
package auction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghantafc/auction/internal/models"
)

type lotKey struct {
	auctionID uuid.UUID
	lotID     uuid.UUID
}

type participantKey struct {
	auctionID uuid.UUID
	userID    uuid.UUID
}

// memStore is an in-memory Store with the same guarded-write semantics as
// the Postgres implementation, for exercising the engine without a database.
type memStore struct {
	mu sync.Mutex

	auctions     map[uuid.UUID]*models.Auction
	participants map[participantKey]*models.Participant
	players      map[uuid.UUID]*models.Player

	lots map[uuid.UUID][]uuid.UUID

	winners   map[lotKey]models.WinnerRecord
	skips     map[lotKey]int
	passVotes map[lotKey]map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		auctions:     make(map[uuid.UUID]*models.Auction),
		participants: make(map[participantKey]*models.Participant),
		players:      make(map[uuid.UUID]*models.Player),
		lots:         make(map[uuid.UUID][]uuid.UUID),
		winners:      make(map[lotKey]models.WinnerRecord),
		skips:        make(map[lotKey]int),
		passVotes:    make(map[lotKey]map[uuid.UUID]bool),
	}
}

func (m *memStore) addAuction(a *models.Auction, lotIDs []uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.auctions[a.ID] = &cp
	m.lots[a.ID] = append([]uuid.UUID(nil), lotIDs...)
}

func (m *memStore) addParticipant(auctionID, userID uuid.UUID, budget int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[participantKey{auctionID, userID}] = &models.Participant{
		AuctionID:       auctionID,
		UserID:          userID,
		InitialBudget:   budget,
		RemainingBudget: budget,
		JoinedAt:        time.Now(),
	}
}

func (m *memStore) addPlayer(p models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.players[p.ID] = &cp
}

// rewindCountdown backdates the auction's last event so the current lot's
// timer reads as expired.
func (m *memStore) rewindCountdown(auctionID uuid.UUID, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.auctions[auctionID]; ok {
		a.LastEventTime = a.LastEventTime.Add(-d)
	}
}

func copyAuction(a *models.Auction) *models.Auction {
	cp := *a
	if a.CurrentLotID != nil {
		v := *a.CurrentLotID
		cp.CurrentLotID = &v
	}
	if a.CurrentBidderID != nil {
		v := *a.CurrentBidderID
		cp.CurrentBidderID = &v
	}
	return &cp
}

func (m *memStore) GetAuction(_ context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAuction(a), nil
}

func (m *memStore) GetParticipant(_ context.Context, auctionID, userID uuid.UUID) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantKey{auctionID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListParticipants(_ context.Context, auctionID uuid.UUID) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participant
	for k, p := range m.participants {
		if k.auctionID == auctionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) GetPlayer(_ context.Context, playerID uuid.UUID) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListWinners(_ context.Context, auctionID uuid.UUID) ([]models.WinnerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WinnerRecord
	for k, w := range m.winners {
		if k.auctionID == auctionID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memStore) HasWinner(_ context.Context, auctionID, lotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.winners[lotKey{auctionID, lotID}]
	return ok, nil
}

func (m *memStore) GetSkipCount(_ context.Context, auctionID, lotID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skips[lotKey{auctionID, lotID}], nil
}

func (m *memStore) EligibleLotIDs(_ context.Context, auctionID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for _, lotID := range m.lots[auctionID] {
		key := lotKey{auctionID, lotID}
		if _, won := m.winners[key]; won {
			continue
		}
		if m.skips[key] >= 2 {
			continue
		}
		out = append(out, lotID)
	}
	return out, nil
}

func (m *memStore) CountLots(_ context.Context, auctionID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lots[auctionID]), nil
}

func (m *memStore) ApplyBid(_ context.Context, auctionID, userID uuid.UUID, amount, expectedBid int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return false, nil
	}
	if a.Status != models.StatusActive || a.CurrentLotID == nil || a.CurrentBid != expectedBid {
		return false, nil
	}
	if _, settled := m.winners[lotKey{auctionID, *a.CurrentLotID}]; settled {
		return false, nil
	}
	bidder := userID
	a.CurrentBid = amount
	a.CurrentBidderID = &bidder
	a.PassVoteCount = 0
	a.LastEventTime = time.Now()
	delete(m.passVotes, lotKey{auctionID, *a.CurrentLotID})
	return true, nil
}

func (m *memStore) RecordPassVote(_ context.Context, auctionID, lotID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := lotKey{auctionID, lotID}
	if m.passVotes[key] == nil {
		m.passVotes[key] = make(map[uuid.UUID]bool)
	}
	m.passVotes[key][userID] = true
	return nil
}

func (m *memStore) CountPassVotes(_ context.Context, auctionID, lotID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.passVotes[lotKey{auctionID, lotID}]), nil
}

func (m *memStore) SetPassVoteCount(_ context.Context, auctionID, lotID uuid.UUID, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok || a.CurrentLotID == nil || *a.CurrentLotID != lotID {
		return nil
	}
	a.PassVoteCount = count
	a.LastEventTime = time.Now()
	return nil
}

func (m *memStore) InsertWinner(_ context.Context, rec models.WinnerRecord, anchor time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := lotKey{rec.AuctionID, rec.LotID}
	if _, exists := m.winners[key]; exists {
		return false, nil
	}
	a, ok := m.auctions[rec.AuctionID]
	if !ok || a.CurrentLotID == nil || *a.CurrentLotID != rec.LotID || !a.LastEventTime.Equal(anchor) {
		return false, nil
	}
	rec.WonAt = time.Now()
	m.winners[key] = rec
	return true, nil
}

func (m *memStore) DebitBudget(_ context.Context, auctionID, userID uuid.UUID, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantKey{auctionID, userID}]
	if !ok || p.RemainingBudget < amount {
		return false, nil
	}
	p.RemainingBudget -= amount
	p.LotsWon++
	return true, nil
}

func (m *memStore) AdvanceLot(_ context.Context, auctionID, prevLot, nextLot uuid.UUID, anchor time.Time, outcome LotOutcome) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok || a.CurrentLotID == nil || *a.CurrentLotID != prevLot {
		return false, nil
	}
	if !a.LastEventTime.Equal(anchor) {
		return false, nil
	}
	if nextLot == uuid.Nil {
		a.CurrentLotID = nil
		a.Status = models.StatusCompleted
	} else {
		v := nextLot
		a.CurrentLotID = &v
	}
	a.CurrentBid = 0
	a.CurrentBidderID = nil
	a.PassVoteCount = 0
	a.LastEventTime = time.Now()
	delete(m.passVotes, lotKey{auctionID, prevLot})
	switch outcome {
	case LotWon:
		a.CompletedLots++
	case LotSkipped:
		a.SkippedLots++
		m.skips[lotKey{auctionID, prevLot}]++
	}
	return true, nil
}

func (m *memStore) StartAuction(_ context.Context, auctionID, firstLot uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return false, nil
	}
	if a.Status != models.StatusPending && a.Status != models.StatusCompleted {
		return false, nil
	}
	v := firstLot
	a.Status = models.StatusActive
	a.CurrentLotID = &v
	a.CurrentBid = 0
	a.CurrentBidderID = nil
	a.PassVoteCount = 0
	a.LastEventTime = time.Now()
	return true, nil
}

func (m *memStore) PauseAuction(_ context.Context, auctionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok || a.Status != models.StatusActive {
		return false, nil
	}
	a.Status = models.StatusPaused
	return true, nil
}

func (m *memStore) ResumeAuction(_ context.Context, auctionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok || a.Status != models.StatusPaused {
		return false, nil
	}
	a.Status = models.StatusActive
	a.LastEventTime = time.Now()
	return true, nil
}

func (m *memStore) EndAuction(_ context.Context, auctionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok || a.Status == models.StatusCompleted {
		return false, nil
	}
	a.Status = models.StatusCompleted
	a.CurrentLotID = nil
	a.CurrentBid = 0
	a.CurrentBidderID = nil
	a.PassVoteCount = 0
	return true, nil
}

func (m *memStore) ResetForRestart(_ context.Context, auctionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.winners {
		if key.auctionID == auctionID {
			delete(m.winners, key)
		}
	}
	for key := range m.skips {
		if key.auctionID == auctionID {
			delete(m.skips, key)
		}
	}
	for key := range m.passVotes {
		if key.auctionID == auctionID {
			delete(m.passVotes, key)
		}
	}
	if a, ok := m.auctions[auctionID]; ok {
		a.CompletedLots = 0
		a.SkippedLots = 0
		a.PassVoteCount = 0
	}
	return nil
}

// mockNotifier collects every published event for assertions.
type mockNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *mockNotifier) Publish(_ context.Context, ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *mockNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

func (n *mockNotifier) has(t EventType) bool {
	for _, got := range n.types() {
		if got == t {
			return true
		}
	}
	return false
}
