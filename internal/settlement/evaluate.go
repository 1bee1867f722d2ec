package settlement

import (
	"github.com/radieske/sportsbook-backend/internal/bet"
	"github.com/radieske/sportsbook-backend/internal/game"
)

// Evaluate decide ganhou/perdeu para uma seleção contra o resultado final.
// Acerto exato, sem crédito parcial. Tipo desconhecido perde: a validação
// na criação da aposta torna esse caminho inalcançável, mas o default
// garante que nada é pago por engano.
func Evaluate(sel bet.Selection, res *game.Result) bool {
	switch sel.Type {
	// Resultado da partida
	case game.MarketHomeWin:
		return res.Outcome == game.OutcomeHomeWin
	case game.MarketAwayWin:
		return res.Outcome == game.OutcomeAwayWin
	case game.MarketDraw:
		return res.Outcome == game.OutcomeDraw

	// Gols: estritamente acima/abaixo da linha
	case game.MarketOver15:
		return res.TotalGoals > 1
	case game.MarketUnder15:
		return res.TotalGoals < 2
	case game.MarketOver25:
		return res.TotalGoals > 2
	case game.MarketUnder25:
		return res.TotalGoals < 3
	case game.MarketOver35:
		return res.TotalGoals > 3
	case game.MarketUnder35:
		return res.TotalGoals < 4

	// Ambas marcam
	case game.MarketBTTSYes:
		return res.BTTS
	case game.MarketBTTSNo:
		return !res.BTTS

	// Dupla chance
	case game.MarketHomeWinOrDraw:
		return res.Outcome == game.OutcomeHomeWin || res.Outcome == game.OutcomeDraw
	case game.MarketHomeWinOrAwayWin:
		return res.Outcome == game.OutcomeHomeWin || res.Outcome == game.OutcomeAwayWin
	case game.MarketAwayWinOrDraw:
		return res.Outcome == game.OutcomeAwayWin || res.Outcome == game.OutcomeDraw

	// Placar exato: chave literal "home-away"
	case game.MarketCorrectScore:
		return sel.Value == res.ScoreKey()

	// HT/FT: sem placar de intervalo registrado a aposta perde (nunca void)
	case game.MarketHalfTimeFullTime:
		key, ok := res.HalfFullKey()
		return ok && sel.Value == key
	}

	return false
}
