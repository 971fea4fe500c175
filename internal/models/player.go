// internal/models/player.go
package models

import "github.com/google/uuid"

// Tier is the coarse rating bracket that sets a player's minimum opening bid.
type Tier string

const (
	TierElite  Tier = "Elite"
	TierGold   Tier = "Gold"
	TierSilver Tier = "Silver"
	TierBronze Tier = "Bronze"
)

// MinimumBid returns the opening-bid floor for a lot of this tier, in GC.
func (t Tier) MinimumBid() int {
	switch t {
	case TierElite:
		return 60
	case TierGold:
		return 50
	case TierSilver:
		return 30
	case TierBronze:
		return 10
	default:
		return 10
	}
}

// TierForOVR maps an overall rating onto its tier bracket.
func TierForOVR(ovr int) Tier {
	switch {
	case ovr >= 85:
		return TierElite
	case ovr >= 80:
		return TierGold
	case ovr >= 75:
		return TierSilver
	default:
		return TierBronze
	}
}

// Player is an immutable catalog entity; one player at a time is up for bid
// as the auction's current lot.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position string    `json:"position"`
	OVR      int       `json:"ovr"`

	Pace      int `json:"pac"`
	Shooting  int `json:"sho"`
	Passing   int `json:"pas"`
	Dribbling int `json:"dri"`
	Defending int `json:"def"`
	Physical  int `json:"phy"`

	Nation string `json:"nation,omitempty"`
	League string `json:"league,omitempty"`
	Club   string `json:"club,omitempty"`
}

// Tier derives the player's bracket from their overall rating.
func (p *Player) Tier() Tier {
	return TierForOVR(p.OVR)
}
