package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/bet"
	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	"github.com/radieske/sportsbook-backend/internal/game"
	"github.com/radieske/sportsbook-backend/internal/services/betting"
	"github.com/radieske/sportsbook-backend/internal/services/games"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/wallet"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
)

// Server expõe a API REST do backend de apostas.
// A identidade chega por headers confiáveis (X-User-Id / X-User-Admin),
// preenchidos pelo gateway de autenticação na frente deste serviço.
type Server struct {
	log     *zap.Logger
	betting *betting.Service
	games   *games.Service
	wallets *walletrepo.Postgres
}

func NewServer(log *zap.Logger, b *betting.Service, g *games.Service, w *walletrepo.Postgres) *Server {
	return &Server{log: log, betting: b, games: g, wallets: w}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Jogos (leitura pública)
	r.Get("/v1/games", s.listGames)
	r.Get("/v1/games/{id}", s.getGame)
	r.Get("/v1/games/{id}/odds", s.getOdds)

	// Apostas
	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets", s.listBets)
	r.Get("/v1/bets/stats", s.betStats)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Delete("/v1/bets/{id}", s.cancelBet)

	// Carteira
	r.Get("/v1/wallet", s.getWallet)
	r.Get("/v1/wallet/balance", s.getBalance)
	r.Get("/v1/wallet/transactions", s.listTransactions)
	r.Post("/v1/wallet/deposit", s.deposit)

	// Admin
	r.Post("/v1/admin/games", s.adminOnly(s.createGame))
	r.Put("/v1/admin/games/{id}/odds", s.adminOnly(s.updateOdds))
	r.Post("/v1/admin/games/{id}/result", s.adminOnly(s.recordResult))
	r.Post("/v1/admin/games/{id}/settle", s.adminOnly(s.settleGame))

	return r
}

// identity extrai o (userId, isAdmin) autenticado da requisição
func identity(r *http.Request) (string, bool) {
	return r.Header.Get("X-User-Id"), r.Header.Get("X-User-Admin") == "true"
}

func (s *Server) adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, isAdmin := identity(r); !isAdmin {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		h(w, r)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, _ := identity(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return "", false
	}
	return userID, true
}

// --- Apostas ---

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}

	wager, err := s.betting.PlaceBet(r.Context(), userID, req.GameID,
		game.MarketType(req.OutcomeType), req.OutcomeValue, req.StakeCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWagerResponse(wager))
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := identity(r)
	wager, err := s.betting.GetBet(r.Context(), chi.URLParam(r, "id"), userID, isAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWagerResponse(wager))
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := identity(r)
	if err := s.betting.CancelBet(r.Context(), chi.URLParam(r, "id"), userID, isAdmin); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	f := betrepo.Filter{
		Status: bet.Status(r.URL.Query().Get("status")),
		GameID: r.URL.Query().Get("gameId"),
	}
	f.From, f.To = dateRange(r)
	page, limit := pageParams(r)

	wagers, total, err := s.betting.ListBets(r.Context(), userID, f, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ListBetsResponse{
		Count:      len(wagers),
		Pagination: Pagination{Total: total, Page: page, Pages: pages(total, limit)},
		Data:       make([]WagerResponse, 0, len(wagers)),
	}
	for _, wg := range wagers {
		resp.Data = append(resp.Data, toWagerResponse(wg))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) betStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := s.betting.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- Carteira ---

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	wal, err := s.wallets.GetOrCreate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.wallets.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance_cents": wal.BalanceCents,
		"stats":         stats,
	})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	balance, err := s.wallets.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{BalanceCents: balance})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	f := walletrepo.TxFilter{Type: wallet.TxType(r.URL.Query().Get("type"))}
	if f.Type != "" && !f.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown transaction type"})
		return
	}
	f.From, f.To = dateRange(r)
	page, limit := pageParams(r)

	txs, total, err := s.wallets.ListTransactions(r.Context(), userID, f, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(txs),
		"pagination": Pagination{Total: total, Page: page, Pages: pages(total, limit)},
		"data":       txs,
	})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}

	// garante que a carteira existe antes do crédito
	if _, err := s.wallets.GetOrCreate(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	desc := req.Description
	if desc == "" {
		desc = "deposit"
	}
	balance, err := s.wallets.Deposit(r.Context(), userID, req.AmountCents, desc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{BalanceCents: balance})
}

// --- Jogos ---

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	gs, err := s.games.List(r.Context(),
		game.Status(r.URL.Query().Get("status")),
		r.URL.Query().Get("sport"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]GameResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, toGameResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(g))
}

func (s *Server) getOdds(w http.ResponseWriter, r *http.Request) {
	odds, err := s.games.GetOdds(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, odds)
}

// --- Admin ---

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}

	g, err := s.games.Create(r.Context(), &game.Game{
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Sport:     req.Sport,
		StartTime: req.StartTime,
		Odds:      req.Odds,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameResponse(g))
}

func (s *Server) updateOdds(w http.ResponseWriter, r *http.Request) {
	var odds game.OddsCatalog
	if err := json.NewDecoder(r.Body).Decode(&odds); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}
	if err := s.games.UpdateOdds(r.Context(), chi.URLParam(r, "id"), odds); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) recordResult(w http.ResponseWriter, r *http.Request) {
	var req RecordResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}

	report, err := s.games.RecordResult(r.Context(), chi.URLParam(r, "id"), &game.Result{
		Outcome:           game.Outcome(req.Outcome),
		HomeScore:         req.HomeScore,
		AwayScore:         req.AwayScore,
		HalfTimeHomeScore: req.HalfTimeHomeScore,
		HalfTimeAwayScore: req.HalfTimeAwayScore,
		Description:       req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) settleGame(w http.ResponseWriter, r *http.Request) {
	report, err := s.games.Settle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- helpers ---

func dateRange(r *http.Request) (*time.Time, *time.Time) {
	fromStr := r.URL.Query().Get("startDate")
	toStr := r.URL.Query().Get("endDate")
	if fromStr == "" || toStr == "" {
		return nil, nil
	}
	from, err1 := time.Parse(time.RFC3339, fromStr)
	to, err2 := time.Parse(time.RFC3339, toStr)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &from, &to
}

func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

func pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz o erro de domínio no status HTTP correspondente
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrStateConflict), errors.Is(err, apperr.ErrMarketUnavailable),
		errors.Is(err, apperr.ErrPreconditionFailed):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// não vaza detalhe interno; o log do serviço carrega o contexto
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
