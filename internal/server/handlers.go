package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"solana-pool-sniper/internal/discovery"
	"solana-pool-sniper/internal/ingestion"
	"solana-pool-sniper/internal/observability"
	"solana-pool-sniper/internal/storage"
)

// handleWebhook decodes a delivery and runs its first notification through
// the processor. Every handled outcome answers 200 so the provider does not
// re-deliver.
// POST /webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	observability.RecordWebhookReceived()

	if s.authToken != "" {
		got := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.authToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid authentication token")
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(body) > maxWebhookBody {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	event, err := discovery.ParseWebhook(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.processor.Process(r.Context(), event)
	if res.Outcome == ingestion.OutcomeError {
		s.logger.Printf("webhook %s: %v", event.Signature, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleStats returns aggregate statistics and the full trade history.
// GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	doc, err := s.trades.Stats(r.Context())
	if err != nil {
		s.logger.Printf("stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleTrade returns a single trade.
// GET /trades/{id}
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "trade id must be an integer")
		return
	}

	trade, err := s.trades.Trade(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		s.logger.Printf("trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string     `json:"status"`
	Uptime        string     `json:"uptime"`
	StartedAt     time.Time  `json:"started_at"`
	LedgerSize    int        `json:"ledger_size"`
	PendingTrades int        `json:"pending_trades"`
	WSClients     int        `json:"ws_clients"`
	Config        StatusInfo `json:"config"`
}

// handleStatus returns server status as JSON.
// GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := s.trades.PendingCount(r.Context())
	if err != nil {
		s.logger.Printf("status: %v", err)
	}

	ledgerSize := 0
	if s.ledger != nil {
		ledgerSize = s.ledger.Len()
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.startedAt).Round(time.Second).String(),
		StartedAt:     s.startedAt,
		LedgerSize:    ledgerSize,
		PendingTrades: pending,
		WSClients:     s.wsClients(),
		Config:        s.info,
	})
}

// writeJSON marshals v as JSON and writes it with the given status code.
// If marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
