package events

import "time"

// Evento emitido pelo motor de liquidação após resolver uma aposta.
type BetSettled struct {
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	GameID      string    `json:"game_id"`
	Status      string    `json:"status"` // "won" | "lost"
	PayoutCents int64     `json:"payout_cents"`
	Ts          time.Time `json:"ts"`
}
