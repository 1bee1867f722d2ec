package bet

import (
	"math"
	"time"

	"github.com/radieske/sportsbook-backend/internal/game"
)

// Status do ciclo de vida de uma aposta. pending é o único estado não
// terminal; cada aposta sai dele no máximo uma vez (liquidação e
// cancelamento são mutuamente exclusivos).
type Status string

const (
	StatusPending   Status = "pending"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusCancelled Status = "cancelled"
	StatusVoided    Status = "voided"
)

// Terminal informa se o status encerra o ciclo de vida da aposta
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusCancelled || s == StatusVoided
}

// Valid informa se o status é um dos enumerados
func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Selection é a previsão do usuário: mercado, valor opcional (placar
// exato / HT-FT) e a odd copiada do catálogo no momento da criação.
// A odd é um valor, não uma referência: edições posteriores do catálogo
// não alcançam apostas já feitas.
type Selection struct {
	Type  game.MarketType `json:"type"`
	Value string          `json:"value,omitempty"`
	Odds  float64         `json:"odds"`
}

// Wager é o modelo persistido no Postgres.
type Wager struct {
	ID      string
	UserID  string
	GameID  string
	Outcome Selection

	StakeCents     int64
	PotentialCents int64 // stake × odd, arredondado a 2 casas
	ActualCents    int64 // 0 até a liquidação

	Status    Status
	SettledAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MinStakeCents aposta mínima (10 unidades)
const MinStakeCents = 1000

// PayoutCents calcula stake × odd arredondado para o centavo mais próximo.
// Trabalhar em centavos equivale ao arredondamento a 2 casas decimais.
func PayoutCents(stakeCents int64, odds float64) int64 {
	return int64(math.Round(float64(stakeCents) * odds))
}

// UserStats estatísticas agregadas de apostas de um usuário
type UserStats struct {
	TotalBets     int     `json:"total_bets"`
	WonBets       int     `json:"won_bets"`
	LostBets      int     `json:"lost_bets"`
	PendingBets   int     `json:"pending_bets"`
	CancelledBets int     `json:"cancelled_bets"`
	WinRate       float64 `json:"win_rate"` // % sobre apostas resolvidas
	TotalStaked   int64   `json:"total_staked_cents"`
	TotalWon      int64   `json:"total_won_cents"`
	ProfitLoss    int64   `json:"profit_loss_cents"`
	ROI           float64 `json:"roi"` // % lucro sobre total apostado
	AvgOdds       float64 `json:"avg_odds"`
}
