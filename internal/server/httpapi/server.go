// Package httpapi is the gateway's HTTP surface: account signup and login,
// the bearer-token Gate and the protected routes behind it.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/upstream"
	"github.com/gorilla/mux"
)

// AccountFlow registers users and logs them in.
type AccountFlow interface {
	Register(ctx context.Context, userName, password string) (*models.Account, error)
	Login(ctx context.Context, userName, password string) (*services.Token, error)
}

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type DirectoryFilter interface {
	Filter(ctx context.Context, category string, limit int) (*upstream.FilterResult, error)
}

type BalanceLookup interface {
	Balance(ctx context.Context, account string) (string, error)
}

// Dependencies are the collaborators the handlers call into. Metrics may be
// nil.
type Dependencies struct {
	Accounts  AccountFlow
	Tokens    TokenValidator
	PublicAPI DirectoryFilter
	Ethereum  BalanceLookup
	Metrics   *metrics.Metrics
}

type HTTPServer struct {
	address         string
	shutdownTimeout time.Duration
	deps            Dependencies
	logger          logging.Logger
}

func NewHTTPServer(address string, shutdownTimeout time.Duration, l logging.Logger, d Dependencies) *HTTPServer {
	return &HTTPServer{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		deps:            d,
		logger:          l.With("module", "http_server"),
	}
}

// Handler builds the router. Protected routes live on a subrouter wrapped by
// Gate; no protected handler can run without passing it.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.accessLog)

	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(Gate(s.deps.Tokens, s.deps.Metrics))
	protected.HandleFunc("/hello", s.handleHello).Methods(http.MethodGet)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/filter", s.handleFilter).Methods(http.MethodGet)
	protected.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)

	// mux skips r.Use middleware for unmatched requests.
	r.NotFoundHandler = s.recoverPanics(s.accessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})))
	r.MethodNotAllowedHandler = s.recoverPanics(s.accessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
