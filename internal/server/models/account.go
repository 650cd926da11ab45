package models

import "time"

// Account is a stored credential record. PasswordHash never leaves the
// server; use Public for anything written to a response.
type Account struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicAccount is the projection of Account that is safe to return to
// callers.
type PublicAccount struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, UserName: a.UserName, CreatedAt: a.CreatedAt}
}
