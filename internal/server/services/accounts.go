// Package services contains the server-side business logic. AccountService
// implements registration and login on top of the credential store, the
// password hasher and the token manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
)

// dummyPasswordHash is verified when the username is unknown so that a
// missing account costs the same as a wrong password. It matches nothing.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// TokenIssuer mints access tokens for a username.
type TokenIssuer interface {
	Issue(userName string) (string, time.Time, error)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

type AccountService struct {
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	issuer      TokenIssuer
	logger      logging.Logger
}

func NewAccountService(m repomanager.RepositoryManager, h cryptox.PasswordHasher, i TokenIssuer, l logging.Logger) *AccountService {
	return &AccountService{
		repomanager: m,
		hasher:      h,
		issuer:      i,
		logger:      l.With("module", "account_service"),
	}
}

func validateCredentials(userName, password string) error {
	switch {
	case userName == "" && password == "":
		return fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	case userName == "":
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	return nil
}

// Register creates an account. It returns common.ErrorValidation for a
// missing field, common.ErrorAlreadyExists for a taken username and
// common.ErrorInternal for anything else.
func (s *AccountService) Register(ctx context.Context, userName, password string) (*models.Account, error) {
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	var created *models.Account
	err = s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		_, err := repo.GetByUserName(ctx, userName)
		switch {
		case err == nil:
			return common.ErrorAlreadyExists
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		created, err = repo.Create(ctx, &models.Account{UserName: userName, PasswordHash: hash})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Info(ctx, "registration rejected, username taken", "username", userName)
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "account creation failed", "username", userName, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "username", userName, "id", created.ID)
	return created, nil
}

// Login verifies the credentials and issues an access token. Unknown
// usernames and wrong passwords both yield common.ErrorInvalidCredentials;
// store and signing failures yield common.ErrorInternal.
func (s *AccountService) Login(ctx context.Context, userName, password string) (*Token, error) {
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts().GetByUserName(ctx, userName)
	targetHash := dummyPasswordHash
	switch {
	case err == nil:
		targetHash = account.PasswordHash
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "account lookup failed", "username", userName, "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, targetHash) || account == nil {
		s.logger.Info(ctx, "login rejected", "username", userName)
		return nil, common.ErrorInvalidCredentials
	}

	accessToken, expiresAt, err := s.issuer.Issue(account.UserName)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "username", userName)
	return &Token{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}
