// Package accounts is the credential store: it persists username and
// password-hash records.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Repository creates and looks up accounts.
//
// Create returns common.ErrorAlreadyExists when the username is taken;
// GetByUserName returns common.ErrorNotFound when there is no such account.
// Any other error means the store itself failed.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
}
