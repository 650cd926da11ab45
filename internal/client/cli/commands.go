package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// getPassword is swapped in tests.
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.gateway.Register(ctx, userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %s)\n", acc.UserName, acc.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.gateway.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.gateway.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Hello(ctx context.Context) error {
	msg, err := a.gateway.Hello(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	name, err := a.gateway.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", name)
	return nil
}

func (a *App) Filter(ctx context.Context) error {
	category, err := GetSimpleText(a.reader, "Category (empty for all)", a.out)
	if err != nil {
		return err
	}
	rawLimit, err := GetSimpleText(a.reader, "Limit (empty for no limit)", a.out)
	if err != nil {
		return err
	}

	limit := -1
	if rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			return errors.New("limit must be a non-negative integer")
		}
	}

	res, err := a.gateway.Filter(ctx, category, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d entries\n", res.Count)
	for _, e := range res.Entries {
		fmt.Fprintln(a.out, string(e))
	}
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	account, err := GetSimpleText(a.reader, "Ethereum account address", a.out)
	if err != nil {
		return err
	}

	balance, err := a.gateway.Balance(ctx, strings.TrimSpace(account))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %s ETH\n", balance)
	return nil
}

// describe turns a command error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return "You are not logged in. Use 'login' first."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, client.ErrUnauthorized):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "Not authorized: " + apiErr.Message
		}
		return "Not authorized."
	default:
		return "Error: " + err.Error()
	}
}
