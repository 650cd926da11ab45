package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
)

const maxBodyBytes = 1 << 20

// credentialsRequest accepts "identifier" as an alias for "username".
type credentialsRequest struct {
	UserName   string `json:"username"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (c credentialsRequest) name() string {
	if c.UserName != "" {
		return c.UserName
	}
	return c.Identifier
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: malformed request body", common.ErrorValidation)
	}
	return req, nil
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		s.deps.Metrics.AuthOutcome(metrics.OpSignup, outcomeFor(err))
		writeFlowError(w, err)
		return
	}

	created, err := s.deps.Accounts.Register(r.Context(), req.name(), req.Password)
	s.deps.Metrics.AuthOutcome(metrics.OpSignup, outcomeFor(err))
	if err != nil {
		writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created.Public())
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		s.deps.Metrics.AuthOutcome(metrics.OpLogin, outcomeFor(err))
		writeFlowError(w, err)
		return
	}

	token, err := s.deps.Accounts.Login(r.Context(), req.name(), req.Password)
	s.deps.Metrics.AuthOutcome(metrics.OpLogin, outcomeFor(err))
	if err != nil {
		writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token.AccessToken, ExpiresAt: token.ExpiresAt.UTC()})
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello"))
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	name, ok := auth.UserNameFromContext(r.Context())
	if !ok {
		writeFlowError(w, common.ErrorUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": name})
}

func (s *HTTPServer) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := -1
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeFlowError(w, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrorValidation))
			return
		}
		limit = n
	}

	result, err := s.deps.PublicAPI.Filter(r.Context(), q.Get("category"), limit)
	if err != nil {
		s.deps.Metrics.UpstreamOutcome("public_api", "error")
		s.logger.Error(r.Context(), "public api request failed", "error", err)
		writeFlowError(w, err)
		return
	}
	s.deps.Metrics.UpstreamOutcome("public_api", "ok")

	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.deps.Ethereum.Balance(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusBadGateway {
			s.deps.Metrics.UpstreamOutcome("ethereum", "error")
			s.logger.Error(r.Context(), "balance lookup failed", "error", err)
		}
		writeFlowError(w, err)
		return
	}
	s.deps.Metrics.UpstreamOutcome("ethereum", "ok")

	writeJSON(w, http.StatusOK, map[string]string{"balance": balance})
}
