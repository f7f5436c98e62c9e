// Package api exposes the simulator's read-only HTTP API: recent trades from
// the journal, per-symbol indicator history, and the portfolio summary. It is
// mounted on the same server as /metrics and /healthz.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"papertrader/internal/paper"
	"papertrader/internal/portfolio"
	"papertrader/internal/ringbuf"
)

const defaultTradeLimit = 50

// Deps are the data sources the API reads from. Any of them may be nil; the
// corresponding endpoint then returns 404.
type Deps struct {
	Journal   *paper.Journal
	History   *ringbuf.History
	Portfolio *portfolio.Tracker
	Logger    *slog.Logger
}

// NewRouter sets up the HTTP routes.
func NewRouter(deps Deps) *http.ServeMux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	if deps.Journal != nil {
		mux.HandleFunc("/api/v1/trades", func(w http.ResponseWriter, r *http.Request) {
			limit := defaultTradeLimit
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 {
					writeError(w, http.StatusBadRequest, "invalid limit")
					return
				}
				limit = n
			}

			trades, err := deps.Journal.GetTrades(limit)
			if err != nil {
				deps.Logger.Error("trade query failed", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "journal query failed")
				return
			}
			writeJSON(w, deps.Logger, trades)
		})
	}

	if deps.History != nil {
		mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
			symbol := r.URL.Query().Get("symbol")
			if symbol == "" {
				writeError(w, http.StatusBadRequest, "symbol is required")
				return
			}

			limit := 0
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 {
					writeError(w, http.StatusBadRequest, "invalid limit")
					return
				}
				limit = n
			}

			records := deps.History.Recent(symbol, limit)
			if records == nil {
				writeError(w, http.StatusNotFound, "unknown symbol")
				return
			}
			writeJSON(w, deps.Logger, records)
		})

		mux.HandleFunc("/api/v1/symbols", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, deps.Logger, deps.History.Symbols())
		})
	}

	if deps.Portfolio != nil {
		mux.HandleFunc("/api/v1/portfolio", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, deps.Logger, deps.Portfolio.GetSummary())
		})
	}

	return mux
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encoding failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
