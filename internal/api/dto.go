package api

import (
	"time"

	"github.com/radieske/sportsbook-backend/internal/bet"
	"github.com/radieske/sportsbook-backend/internal/game"
)

type PlaceBetRequest struct {
	GameID       string `json:"gameId"`
	OutcomeType  string `json:"outcomeType"`            // um dos 14 mercados
	OutcomeValue string `json:"outcomeValue,omitempty"` // exigido p/ correctScore e halfTimeFullTime
	StakeCents   int64  `json:"stake_cents"`
}

type WagerResponse struct {
	BetID          string     `json:"betId"`
	UserID         string     `json:"userId"`
	GameID         string     `json:"gameId"`
	OutcomeType    string     `json:"outcomeType"`
	OutcomeValue   string     `json:"outcomeValue,omitempty"`
	OddValue       float64    `json:"odd_value"`
	StakeCents     int64      `json:"stake_cents"`
	PotentialCents int64      `json:"potential_cents"`
	ActualCents    int64      `json:"actual_cents"`
	Status         string     `json:"status"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toWagerResponse(w *bet.Wager) WagerResponse {
	return WagerResponse{
		BetID:          w.ID,
		UserID:         w.UserID,
		GameID:         w.GameID,
		OutcomeType:    string(w.Outcome.Type),
		OutcomeValue:   w.Outcome.Value,
		OddValue:       w.Outcome.Odds,
		StakeCents:     w.StakeCents,
		PotentialCents: w.PotentialCents,
		ActualCents:    w.ActualCents,
		Status:         string(w.Status),
		SettledAt:      w.SettledAt,
		CreatedAt:      w.CreatedAt,
	}
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type ListBetsResponse struct {
	Count      int             `json:"count"`
	Pagination Pagination      `json:"pagination"`
	Data       []WagerResponse `json:"data"`
}

type CreateGameRequest struct {
	HomeTeam  string           `json:"homeTeam"`
	AwayTeam  string           `json:"awayTeam"`
	Sport     string           `json:"sport"`
	StartTime time.Time        `json:"startTime"`
	Odds      game.OddsCatalog `json:"odds"`
}

type GameResponse struct {
	GameID    string           `json:"gameId"`
	HomeTeam  string           `json:"homeTeam"`
	AwayTeam  string           `json:"awayTeam"`
	Sport     string           `json:"sport"`
	StartTime time.Time        `json:"startTime"`
	Status    string           `json:"status"`
	Odds      game.OddsCatalog `json:"odds"`
	Result    *game.Result     `json:"result,omitempty"`
}

func toGameResponse(g *game.Game) GameResponse {
	return GameResponse{
		GameID:    g.ID,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		Sport:     g.Sport,
		StartTime: g.StartTime,
		Status:    string(g.Status),
		Odds:      g.Odds,
		Result:    g.Result,
	}
}

type RecordResultRequest struct {
	Outcome           string `json:"outcome"` // homeWin | awayWin | draw
	HomeScore         int    `json:"homeScore"`
	AwayScore         int    `json:"awayScore"`
	HalfTimeHomeScore *int   `json:"halfTimeHomeScore,omitempty"`
	HalfTimeAwayScore *int   `json:"halfTimeAwayScore,omitempty"`
	Description       string `json:"description,omitempty"`
}

type DepositRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}

type BalanceResponse struct {
	BalanceCents int64 `json:"balance_cents"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
