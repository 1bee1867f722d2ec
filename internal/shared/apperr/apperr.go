package apperr

import "errors"

// Erros de domínio compartilhados entre os componentes.
// Os handlers HTTP traduzem cada um para o status code adequado.
var (
	// ErrValidation entrada malformada ou ausente; o cliente precisa corrigir
	ErrValidation = errors.New("validation failed")

	// ErrNotFound jogo, aposta ou usuário desconhecido
	ErrNotFound = errors.New("not found")

	// ErrStateConflict estado de ciclo de vida incompatível com a operação
	ErrStateConflict = errors.New("state conflict")

	// ErrMarketUnavailable odd ausente no catálogo do jogo (mercado não ofertado)
	ErrMarketUnavailable = errors.New("market not available")

	// ErrUnauthorized requisitante não é dono nem admin
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientFunds saldo insuficiente para o débito
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistence falha transitória de armazenamento; pode ser repetida
	ErrPersistence = errors.New("persistence failure")

	// ErrPreconditionFailed liquidação invocada sobre jogo sem resultado final
	ErrPreconditionFailed = errors.New("precondition failed")
)
