package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voltaic-labs/gridveil/ledger"
)

// HTTPLedger exposes the metering ledger over HTTP.
type HTTPLedger struct {
	ledger *ledger.Ledger
	log    *slog.Logger
}

// NewHTTPLedger wraps a ledger with HTTP endpoints.
func NewHTTPLedger(lg *ledger.Ledger, log *slog.Logger) *HTTPLedger {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPLedger{ledger: lg, log: log}
}

// RegisterRoutes registers the ledger endpoints.
func (s *HTTPLedger) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Recoverer)

	r.Post("/sessions", s.handleSubmitSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Post("/windows/{key}/accumulate", s.handleAccumulate)
	r.Get("/windows/{key}", s.handleGetWindow)
	r.Post("/windows/{key}/forecast", s.handleForecast)
	r.Post("/windows/{key}/load-balance", s.handleLoadBalance)
	r.Post("/regions/{key}/site-suggestion", s.handleSiteSuggestion)
	r.Post("/oracle/callback", s.handleOracleCallback)
	r.Get("/results/{requestID}", s.handleGetResult)
}

// statusFor maps ledger errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNoMetricsForWindow):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidProof):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrRepeatDelivery):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *HTTPLedger) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	var req SubmitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.ledger.SubmitSession(req.StationID, req.StartBucket, req.DurationBucket, req.Energy)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	json.NewEncoder(w).Encode(&SubmitSessionResponse{ID: id})
}

func (s *HTTPLedger) handleGetSession(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	session, ok, err := s.ledger.Session(ledger.SessionID(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(&SessionResponse{
		ID:             session.ID,
		StationID:      session.StationID,
		StartBucket:    session.StartBucket,
		DurationBucket: session.DurationBucket,
		Energy:         session.Energy,
		SubmittedAt:    session.SubmittedAt,
	})
}

func (s *HTTPLedger) handleAccumulate(w http.ResponseWriter, r *http.Request) {
	key := ledger.WindowKey(chi.URLParam(r, "key"))

	var req AccumulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.ledger.Accumulate(key, req.CountDelta, req.EnergyDelta); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPLedger) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	key := ledger.WindowKey(chi.URLParam(r, "key"))

	metrics, ok, err := s.ledger.Window(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := &WindowResponse{}
	if ok && metrics.Initialized {
		resp.Initialized = true
		resp.TotalEnergy = metrics.TotalEnergy
		resp.SessionCount = metrics.SessionCount
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *HTTPLedger) handleForecast(w http.ResponseWriter, r *http.Request) {
	key := ledger.WindowKey(chi.URLParam(r, "key"))

	id, err := s.ledger.RequestDemandForecast(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	json.NewEncoder(w).Encode(&RevealResponse{RequestID: id})
}

func (s *HTTPLedger) handleLoadBalance(w http.ResponseWriter, r *http.Request) {
	key := ledger.WindowKey(chi.URLParam(r, "key"))

	var req LoadBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.ledger.RequestLoadBalance(r.Context(), key, req.Priority)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	json.NewEncoder(w).Encode(&RevealResponse{RequestID: id})
}

func (s *HTTPLedger) handleSiteSuggestion(w http.ResponseWriter, r *http.Request) {
	key := ledger.RegionKey(chi.URLParam(r, "key"))

	var req SiteSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.ledger.RequestSiteSuggestion(r.Context(), ledger.Caller(req.Caller), key, req.Demand, req.StationCount)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	json.NewEncoder(w).Encode(&RevealResponse{RequestID: id})
}

func (s *HTTPLedger) handleOracleCallback(w http.ResponseWriter, r *http.Request) {
	var req OracleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.ledger.Deliver(r.Context(), req.RequestID, req.Cleartexts, req.Proof); err != nil {
		s.log.Warn("oracle callback rejected", "requestID", string(req.RequestID), "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPLedger) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := ledger.RequestID(chi.URLParam(r, "requestID"))

	label, payload, revealed := s.ledger.Result(id)
	json.NewEncoder(w).Encode(&ResultResponse{Label: label, Payload: payload, Revealed: revealed})
}
