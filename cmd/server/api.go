package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/observability"
	"devrewards-ledger/internal/staking"
	"devrewards-ledger/internal/storage"
	"devrewards-ledger/internal/stream"
	"devrewards-ledger/internal/token"
)

// apiServer holds the wired components behind the HTTP API.
type apiServer struct {
	store   storage.Ledger
	events  storage.EventStore
	tokens  *token.Service
	ledger  *staking.Ledger
	hub     *stream.Hub
	metrics *observability.Metrics
	logger  *log.Logger
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /stake", s.handleStake)
	mux.HandleFunc("POST /unstake", s.handleUnstake)
	mux.HandleFunc("POST /claim", s.handleClaim)
	mux.HandleFunc("POST /transfer", s.handleTransfer)
	mux.HandleFunc("POST /approve-delegate", s.handleApproveDelegate)
	mux.HandleFunc("POST /revoke-delegate", s.handleRevokeDelegate)
	mux.HandleFunc("POST /delegated-transfer", s.handleDelegatedTransfer)
	mux.HandleFunc("POST /metadata", s.handleRegisterMetadata)

	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /positions", s.handlePositions)
	mux.HandleFunc("GET /account", s.handleAccount)
	mux.HandleFunc("GET /events", s.handleEvents)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.Handle("GET /ws/events", s.hub)

	return mux
}

type stakeRequest struct {
	Owner        string `json:"owner"`
	Amount       uint64 `json:"amount"`
	LockDuration int64  `json:"lock_duration"`
}

func (s *apiServer) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	event, err := s.ledger.Stake(r.Context(), req.Owner, req.Amount, req.LockDuration)
	s.metrics.RecordLatency("stake", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordFailure("stake", reasonLabel(err))
		s.writeError(w, err)
		return
	}

	if stats, statsErr := s.store.GetStats(r.Context()); statsErr == nil {
		s.metrics.RecordStake(stats.TotalStaked)
	}
	s.metrics.LastSuccessfulOperation.SetToCurrentTime()
	writeJSON(w, http.StatusOK, event)
}

type unstakeRequest struct {
	Owner      string `json:"owner"`
	StakeIndex uint64 `json:"stake_index"`
}

func (s *apiServer) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req unstakeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	event, err := s.ledger.Unstake(r.Context(), req.Owner, req.StakeIndex)
	s.metrics.RecordLatency("unstake", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordFailure("unstake", reasonLabel(err))
		s.writeError(w, err)
		return
	}

	totalStaked := uint64(0)
	if stats, statsErr := s.store.GetStats(r.Context()); statsErr == nil {
		totalStaked = stats.TotalStaked
	}
	s.metrics.RecordUnstake(totalStaked, event.Rewards)
	s.metrics.LastSuccessfulOperation.SetToCurrentTime()
	writeJSON(w, http.StatusOK, event)
}

type claimRequest struct {
	Owner string `json:"owner"`
}

func (s *apiServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	claim, err := s.tokens.Claim(r.Context(), req.Owner)
	s.metrics.RecordLatency("claim", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordFailure("claim", reasonLabel(err))
		s.writeError(w, err)
		return
	}

	s.metrics.ClaimsTotal.Inc()
	writeJSON(w, http.StatusOK, claim)
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

func (s *apiServer) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.tokens.Transfer(r.Context(), req.From, req.To, req.Owner, req.Amount)
	s.metrics.RecordLatency("transfer", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordFailure("transfer", reasonLabel(err))
		s.writeError(w, err)
		return
	}

	s.metrics.TransfersTotal.WithLabelValues("owner").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type approveDelegateRequest struct {
	Account  string `json:"account"`
	Owner    string `json:"owner"`
	Delegate string `json:"delegate"`
	Amount   uint64 `json:"amount"`
}

func (s *apiServer) handleApproveDelegate(w http.ResponseWriter, r *http.Request) {
	var req approveDelegateRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := s.tokens.ApproveDelegate(r.Context(), req.Account, req.Owner, req.Delegate, req.Amount); err != nil {
		s.metrics.RecordFailure("approve_delegate", reasonLabel(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type revokeDelegateRequest struct {
	Account string `json:"account"`
	Owner   string `json:"owner"`
}

func (s *apiServer) handleRevokeDelegate(w http.ResponseWriter, r *http.Request) {
	var req revokeDelegateRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := s.tokens.RevokeDelegate(r.Context(), req.Account, req.Owner); err != nil {
		s.metrics.RecordFailure("revoke_delegate", reasonLabel(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type delegatedTransferRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Delegate string `json:"delegate"`
	Amount   uint64 `json:"amount"`
}

func (s *apiServer) handleDelegatedTransfer(w http.ResponseWriter, r *http.Request) {
	var req delegatedTransferRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.tokens.DelegatedTransfer(r.Context(), req.From, req.To, req.Delegate, req.Amount)
	s.metrics.RecordLatency("delegated_transfer", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordFailure("delegated_transfer", reasonLabel(err))
		s.writeError(w, err)
		return
	}

	s.metrics.TransfersTotal.WithLabelValues("delegate").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type metadataRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

func (s *apiServer) handleRegisterMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	md, err := s.tokens.RegisterMetadata(r.Context(), req.Name, req.Symbol, req.URI)
	if err != nil {
		s.metrics.RecordFailure("register_metadata", reasonLabel(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "owner query parameter is required"})
		return
	}

	positions, err := s.store.ListPositionsByOwner(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *apiServer) handleAccount(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "owner query parameter is required"})
		return
	}

	cfg, err := s.store.GetConfig(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	address, err := keys.TokenAccountAddress(owner, cfg.Mint)
	if err != nil {
		s.writeError(w, err)
		return
	}

	account, err := s.store.GetAccount(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user query parameter is required"})
		return
	}

	stakes, err := s.events.GetStakeEventsByUser(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unstakes, err := s.events.GetUnstakeEventsByUser(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stakes":   stakes,
		"unstakes": unstakes,
	})
}

// errorResponse is the JSON error body. Code carries the ledger's
// numeric error code where one exists.
type errorResponse struct {
	Error string `json:"error"`
	Code  *int   `json:"code,omitempty"`
}

// apiCode maps a ledger error to its numeric code and HTTP status.
func apiCode(err error) (code int, status int, ok bool) {
	switch {
	case errors.Is(err, token.ErrClaimTooSoon):
		return 0, http.StatusTooManyRequests, true
	case errors.Is(err, staking.ErrAmountTooSmall), errors.Is(err, token.ErrAmountTooSmall):
		return 1, http.StatusBadRequest, true
	case errors.Is(err, staking.ErrAmountTooLarge), errors.Is(err, token.ErrAmountTooLarge):
		return 2, http.StatusBadRequest, true
	case errors.Is(err, custody.ErrInsufficientBalance):
		return 3, http.StatusUnprocessableEntity, true
	case errors.Is(err, custody.ErrMintMismatch):
		return 4, http.StatusUnprocessableEntity, true
	case errors.Is(err, staking.ErrStillLocked):
		return 5, http.StatusUnprocessableEntity, true
	case errors.Is(err, custody.ErrInsufficientVaultBalance):
		return 6, http.StatusUnprocessableEntity, true
	case errors.Is(err, staking.ErrDurationTooShort):
		return 7, http.StatusBadRequest, true
	case errors.Is(err, staking.ErrDurationTooLong):
		return 8, http.StatusBadRequest, true
	case errors.Is(err, staking.ErrArithmeticOverflow):
		return 9, http.StatusInternalServerError, true
	}
	return 0, 0, false
}

func (s *apiServer) writeError(w http.ResponseWriter, err error) {
	if code, status, ok := apiCode(err); ok {
		writeJSON(w, status, errorResponse{Error: err.Error(), Code: &code})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, staking.ErrPositionNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, custody.ErrUnauthorized), errors.Is(err, custody.ErrDelegateNotApproved):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrAlreadyInitialized), errors.Is(err, storage.ErrDuplicateKey):
		status = http.StatusConflict
	case errors.Is(err, staking.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, token.ErrNameEmpty), errors.Is(err, token.ErrNameTooLong),
		errors.Is(err, token.ErrSymbolEmpty), errors.Is(err, token.ErrSymbolTooLong),
		errors.Is(err, token.ErrURIEmpty), errors.Is(err, token.ErrURITooLong),
		errors.Is(err, token.ErrInvalidURIFormat), errors.Is(err, storage.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// reasonLabel reduces an error to a low-cardinality metrics label.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, staking.ErrAmountTooSmall), errors.Is(err, token.ErrAmountTooSmall):
		return "amount_too_small"
	case errors.Is(err, staking.ErrAmountTooLarge), errors.Is(err, token.ErrAmountTooLarge):
		return "amount_too_large"
	case errors.Is(err, staking.ErrDurationTooShort):
		return "duration_too_short"
	case errors.Is(err, staking.ErrDurationTooLong):
		return "duration_too_long"
	case errors.Is(err, staking.ErrStillLocked):
		return "still_locked"
	case errors.Is(err, staking.ErrPositionNotFound):
		return "position_not_found"
	case errors.Is(err, staking.ErrArithmeticOverflow):
		return "arithmetic_overflow"
	case errors.Is(err, staking.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, custody.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, custody.ErrInsufficientVaultBalance):
		return "insufficient_vault_balance"
	case errors.Is(err, custody.ErrMintMismatch):
		return "mint_mismatch"
	case errors.Is(err, custody.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, custody.ErrDelegateNotApproved):
		return "delegate_not_approved"
	case errors.Is(err, token.ErrClaimTooSoon):
		return "claim_too_soon"
	case errors.Is(err, storage.ErrDuplicateKey), errors.Is(err, storage.ErrAlreadyInitialized):
		return "duplicate"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
