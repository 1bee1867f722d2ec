package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores de negócio expostos em /metrics
var (
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_bets_placed_total",
		Help: "Total de apostas criadas com sucesso.",
	})

	BetsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_bets_cancelled_total",
		Help: "Total de apostas canceladas antes do início do jogo.",
	})

	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_bets_settled_total",
		Help: "Total de apostas liquidadas, por resultado.",
	}, []string{"result"}) // "won" | "lost"

	SettlementErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_settlement_errors_total",
		Help: "Falhas individuais de liquidação (unidade aposta).",
	})

	WalletTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_wallet_transactions_total",
		Help: "Transações de carteira aplicadas, por tipo.",
	}, []string{"type"})
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer sobe um servidor HTTP leve só pra /metrics e /healthz.
// executável em numa goroutine no main de cada serviço.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
