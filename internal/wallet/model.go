package wallet

import "time"

// TxType tipo de transação do extrato da carteira
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxBet        TxType = "bet"
	TxWin        TxType = "win"
)

// Valid informa se o tipo é um dos quatro aceitos
func (t TxType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxBet, TxWin:
		return true
	}
	return false
}

// Transaction entrada do extrato (append-only). Valores em centavos,
// com sinal: bet e withdrawal negativos, deposit e win positivos.
// Exceção: o estorno de cancelamento entra como withdrawal positiva,
// rotulada como refund na descrição.
type Transaction struct {
	ID          int64     `json:"id"`
	WalletID    string    `json:"wallet_id"`
	Type        TxType    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Wallet carteira virtual de um usuário
type Wallet struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
	Version      int64  `json:"version"`
}

// Stats resumo financeiro do extrato
type Stats struct {
	DepositsCents    int64 `json:"deposits_cents"`
	WithdrawalsCents int64 `json:"withdrawals_cents"`
	BetAmountsCents  int64 `json:"bet_amounts_cents"`
	WinningsCents    int64 `json:"winnings_cents"`
	ProfitLossCents  int64 `json:"profit_loss_cents"`
}

// InitialBalanceCents saldo inicial de uma carteira nova (1000 moedas virtuais)
const InitialBalanceCents = 100000
