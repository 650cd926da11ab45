package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-Id"

// Gate admits a request only if it carries a valid bearer token. A missing
// or malformed Authorization header is answered with 401, a token that fails
// validation with 403. On success the username is attached to the request
// context (see auth.UserNameFromContext).
func Gate(tokens TokenValidator, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
			if err != nil {
				m.AuthOutcome(metrics.OpGate, outcomeFor(err))
				writeFlowError(w, err)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				m.AuthOutcome(metrics.OpGate, outcomeFor(err))
				writeFlowError(w, err)
				return
			}

			m.AuthOutcome(metrics.OpGate, outcomeFor(nil))
			next.ServeHTTP(w, r.WithContext(auth.WithUserName(r.Context(), claims.UserName)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// unmatchedRoute labels requests no route matched, keeping raw paths out of
// the metric labels.
const unmatchedRoute = "unmatched"

// accessLog tags the request with an id (echoed in X-Request-Id and added
// to every log line written with the request context), then logs and
// measures it.
func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := unmatchedRoute
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		d := time.Since(start)
		s.deps.Metrics.ObserveHTTP(r.Method, route, rw.status, d)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", d.String(),
		)
	})
}

func (s *HTTPServer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error(r.Context(), "panic", "error", fmt.Sprint(err), "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
