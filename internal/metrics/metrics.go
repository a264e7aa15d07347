package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Free-text messages by interpretation outcome
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_messages_total",
		Help: "Total number of free-text messages by interpretation outcome.",
	}, []string{"outcome"}) // complete, amount_only, unrecognized

	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_commands_total",
		Help: "Total number of processed commands by transport and name.",
	}, []string{"transport", "command"})

	CategoryChoicesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_category_choices_total",
		Help: "Total number of category menu selections by result.",
	}, []string{"result"}) // recorded, stale, invalid

	ExpensesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spending_expenses_recorded_total",
		Help: "Total number of expenses written to the ledger.",
	})

	UndoTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_undo_total",
		Help: "Total number of undo requests by result.",
	}, []string{"result"}) // removed, empty

	ReportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spending_reports_total",
		Help: "Total number of month-to-date reports generated.",
	})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_rate_limited_total",
		Help: "Total number of messages dropped by the per-chat limiter.",
	}, []string{"transport"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spending_errors_total",
		Help: "Total number of errors by kind.",
	}, []string{"kind"}) // persistence, internal, send
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}()

	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
