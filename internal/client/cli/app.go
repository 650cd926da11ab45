// Package cli is the interactive terminal front end of the gatekeeper
// client.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/config"
)

// Gateway is the part of client.HTTPClient the commands use.
type Gateway interface {
	Register(ctx context.Context, userName string, password []byte) (*client.Account, error)
	Login(ctx context.Context, userName string, password []byte) error
	Logout()
	IsLoggedIn() bool
	Hello(ctx context.Context) (string, error)
	Me(ctx context.Context) (string, error)
	Filter(ctx context.Context, category string, limit int) (*client.FilterResult, error)
	Balance(ctx context.Context, account string) (string, error)
}

type App struct {
	gateway  Gateway
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	gw, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(gw, os.Stdin, os.Stdout), nil
}

func newApp(g Gateway, in io.Reader, out io.Writer) *App {
	return &App{gateway: g, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.gateway.IsLoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.userName
	}
	return "not logged in"
}

// Run reads commands until EOF or "exit".
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.status, a.reader, a.out)
}
