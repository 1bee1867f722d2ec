package game

import (
	"fmt"
	"time"

	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
)

// Status do ciclo de vida de um jogo
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusCanceled  Status = "canceled"
)

// Outcome resultado básico de uma partida
type Outcome string

const (
	OutcomeHomeWin Outcome = "homeWin"
	OutcomeAwayWin Outcome = "awayWin"
	OutcomeDraw    Outcome = "draw"
)

// MarketType identifica um dos 14 mercados ofertados.
// correctScore e halfTimeFullTime exigem um valor adicional (chave nos mapas
// de odds variáveis); os demais são chaves fixas do catálogo.
type MarketType string

const (
	// Resultado da partida
	MarketHomeWin MarketType = "homeWin"
	MarketAwayWin MarketType = "awayWin"
	MarketDraw    MarketType = "draw"

	// Gols
	MarketOver15  MarketType = "over15"
	MarketUnder15 MarketType = "under15"
	MarketOver25  MarketType = "over25"
	MarketUnder25 MarketType = "under25"
	MarketOver35  MarketType = "over35"
	MarketUnder35 MarketType = "under35"

	// Ambas marcam
	MarketBTTSYes MarketType = "bttsYes"
	MarketBTTSNo  MarketType = "bttsNo"

	// Dupla chance
	MarketHomeWinOrDraw    MarketType = "homeWinOrDraw"
	MarketHomeWinOrAwayWin MarketType = "homeWinOrAwayWin"
	MarketAwayWinOrDraw    MarketType = "awayWinOrDraw"

	// Mercados com valor (chave variável)
	MarketCorrectScore     MarketType = "correctScore"
	MarketHalfTimeFullTime MarketType = "halfTimeFullTime"
)

// MinOdds odd decimal mínima aceita no catálogo
const MinOdds = 1.01

// Valid informa se o tipo de mercado é um dos 14 enumerados
func (m MarketType) Valid() bool {
	switch m {
	case MarketHomeWin, MarketAwayWin, MarketDraw,
		MarketOver15, MarketUnder15, MarketOver25, MarketUnder25, MarketOver35, MarketUnder35,
		MarketBTTSYes, MarketBTTSNo,
		MarketHomeWinOrDraw, MarketHomeWinOrAwayWin, MarketAwayWinOrDraw,
		MarketCorrectScore, MarketHalfTimeFullTime:
		return true
	}
	return false
}

// NeedsValue indica se o mercado exige chave adicional (placar exato, HT/FT)
func (m MarketType) NeedsValue() bool {
	return m == MarketCorrectScore || m == MarketHalfTimeFullTime
}

// OddsCatalog tabela de odds fixas por jogo. Campos nil significam mercado
// não ofertado para o esporte/jogo. Os dois mapas carregam os mercados de
// chave variável (placar exato "2-0", HT/FT "draw/homeWin").
type OddsCatalog struct {
	HomeWin *float64 `json:"homeWin,omitempty"`
	AwayWin *float64 `json:"awayWin,omitempty"`
	Draw    *float64 `json:"draw,omitempty"`

	Over15  *float64 `json:"over15,omitempty"`
	Under15 *float64 `json:"under15,omitempty"`
	Over25  *float64 `json:"over25,omitempty"`
	Under25 *float64 `json:"under25,omitempty"`
	Over35  *float64 `json:"over35,omitempty"`
	Under35 *float64 `json:"under35,omitempty"`

	BTTSYes *float64 `json:"bttsYes,omitempty"`
	BTTSNo  *float64 `json:"bttsNo,omitempty"`

	HomeWinOrDraw    *float64 `json:"homeWinOrDraw,omitempty"`
	HomeWinOrAwayWin *float64 `json:"homeWinOrAwayWin,omitempty"`
	AwayWinOrDraw    *float64 `json:"awayWinOrDraw,omitempty"`

	CorrectScore     map[string]float64 `json:"correctScore,omitempty"`
	HalfTimeFullTime map[string]float64 `json:"halfTimeFullTime,omitempty"`
}

// fixed resolve o ponteiro da odd fixa correspondente ao mercado
func (c *OddsCatalog) fixed(m MarketType) *float64 {
	switch m {
	case MarketHomeWin:
		return c.HomeWin
	case MarketAwayWin:
		return c.AwayWin
	case MarketDraw:
		return c.Draw
	case MarketOver15:
		return c.Over15
	case MarketUnder15:
		return c.Under15
	case MarketOver25:
		return c.Over25
	case MarketUnder25:
		return c.Under25
	case MarketOver35:
		return c.Over35
	case MarketUnder35:
		return c.Under35
	case MarketBTTSYes:
		return c.BTTSYes
	case MarketBTTSNo:
		return c.BTTSNo
	case MarketHomeWinOrDraw:
		return c.HomeWinOrDraw
	case MarketHomeWinOrAwayWin:
		return c.HomeWinOrAwayWin
	case MarketAwayWinOrDraw:
		return c.AwayWinOrDraw
	}
	return nil
}

// ResolveOdd devolve a odd corrente do catálogo para o mercado pedido.
// O valor retornado é copiado para a aposta no momento da criação e a
// partir daí fica imutável, mesmo que o catálogo seja editado depois.
func (c *OddsCatalog) ResolveOdd(m MarketType, value string) (float64, error) {
	if !m.Valid() {
		return 0, fmt.Errorf("%w: unknown outcome type %q", apperr.ErrValidation, m)
	}

	if m.NeedsValue() {
		if value == "" {
			return 0, fmt.Errorf("%w: outcome value required for %s", apperr.ErrValidation, m)
		}
		var odds map[string]float64
		if m == MarketCorrectScore {
			odds = c.CorrectScore
		} else {
			odds = c.HalfTimeFullTime
		}
		od, ok := odds[value]
		if !ok {
			return 0, fmt.Errorf("%w: %s %q", apperr.ErrMarketUnavailable, m, value)
		}
		return od, nil
	}

	od := c.fixed(m)
	if od == nil {
		return 0, fmt.Errorf("%w: %s", apperr.ErrMarketUnavailable, m)
	}
	return *od, nil
}

// Validate garante que toda odd presente respeita o mínimo decimal
func (c *OddsCatalog) Validate() error {
	check := func(name string, od *float64) error {
		if od != nil && *od < MinOdds {
			return fmt.Errorf("%w: odd %s below minimum %.2f", apperr.ErrValidation, name, MinOdds)
		}
		return nil
	}

	fixed := map[string]*float64{
		"homeWin": c.HomeWin, "awayWin": c.AwayWin, "draw": c.Draw,
		"over15": c.Over15, "under15": c.Under15,
		"over25": c.Over25, "under25": c.Under25,
		"over35": c.Over35, "under35": c.Under35,
		"bttsYes": c.BTTSYes, "bttsNo": c.BTTSNo,
		"homeWinOrDraw": c.HomeWinOrDraw, "homeWinOrAwayWin": c.HomeWinOrAwayWin,
		"awayWinOrDraw": c.AwayWinOrDraw,
	}
	for name, od := range fixed {
		if err := check(name, od); err != nil {
			return err
		}
	}
	for k, od := range c.CorrectScore {
		if od < MinOdds {
			return fmt.Errorf("%w: correctScore %q below minimum %.2f", apperr.ErrValidation, k, MinOdds)
		}
	}
	for k, od := range c.HalfTimeFullTime {
		if od < MinOdds {
			return fmt.Errorf("%w: halfTimeFullTime %q below minimum %.2f", apperr.ErrValidation, k, MinOdds)
		}
	}
	return nil
}

// Result resultado final de um jogo; gravado uma única vez, junto com a
// transição de status para finished.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	HomeScore int     `json:"homeScore"`
	AwayScore int     `json:"awayScore"`

	// Derivados no registro do resultado
	TotalGoals int  `json:"totalGoals"`
	BTTS       bool `json:"btts"`

	// Placar de intervalo, quando disponível
	HalfTimeHomeScore *int `json:"halfTimeHomeScore,omitempty"`
	HalfTimeAwayScore *int `json:"halfTimeAwayScore,omitempty"`

	Description string `json:"description,omitempty"`
}

// ScoreKey chave "home-away" usada pelo mercado de placar exato
func (r *Result) ScoreKey() string {
	return fmt.Sprintf("%d-%d", r.HomeScore, r.AwayScore)
}

// HalfTimeOutcome resultado do primeiro tempo; ok=false quando os placares
// de intervalo não foram registrados
func (r *Result) HalfTimeOutcome() (Outcome, bool) {
	if r.HalfTimeHomeScore == nil || r.HalfTimeAwayScore == nil {
		return "", false
	}
	switch {
	case *r.HalfTimeHomeScore > *r.HalfTimeAwayScore:
		return OutcomeHomeWin, true
	case *r.HalfTimeHomeScore < *r.HalfTimeAwayScore:
		return OutcomeAwayWin, true
	default:
		return OutcomeDraw, true
	}
}

// HalfFullKey chave composta "<intervalo>/<final>" do mercado HT/FT.
// ok=false quando não há placar de intervalo; nesse caso apostas HT/FT
// perdem por definição (nunca "void").
func (r *Result) HalfFullKey() (string, bool) {
	half, ok := r.HalfTimeOutcome()
	if !ok {
		return "", false
	}
	return string(half) + "/" + string(r.Outcome), true
}

// Validate checa coerência entre outcome declarado e placares
func (r *Result) Validate() error {
	if r.HomeScore < 0 || r.AwayScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", apperr.ErrValidation)
	}

	var want Outcome
	switch {
	case r.HomeScore > r.AwayScore:
		want = OutcomeHomeWin
	case r.HomeScore < r.AwayScore:
		want = OutcomeAwayWin
	default:
		want = OutcomeDraw
	}
	if r.Outcome != want {
		return fmt.Errorf("%w: outcome %q does not match score %d-%d", apperr.ErrValidation, r.Outcome, r.HomeScore, r.AwayScore)
	}

	if (r.HalfTimeHomeScore == nil) != (r.HalfTimeAwayScore == nil) {
		return fmt.Errorf("%w: half-time scores must be given together", apperr.ErrValidation)
	}
	if r.HalfTimeHomeScore != nil && (*r.HalfTimeHomeScore < 0 || *r.HalfTimeAwayScore < 0) {
		return fmt.Errorf("%w: half-time scores must be non-negative", apperr.ErrValidation)
	}
	return nil
}

// Derive preenche os campos derivados a partir dos placares
func (r *Result) Derive() {
	r.TotalGoals = r.HomeScore + r.AwayScore
	r.BTTS = r.HomeScore > 0 && r.AwayScore > 0
}

// Game é o modelo persistido no Postgres.
type Game struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	Sport     string
	StartTime time.Time
	Status    Status
	Odds      OddsCatalog
	Result    *Result
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OpenForBetting informa se o jogo ainda aceita apostas
func (g *Game) OpenForBetting(now time.Time) bool {
	return g.Status == StatusScheduled && g.StartTime.After(now)
}
