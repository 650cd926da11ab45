package auth

import (
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". A missing header, another scheme or an empty token
// yields common.ErrorUnauthenticated.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || scheme != common.BearerScheme {
		return "", common.ErrorUnauthenticated
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrorUnauthenticated
	}

	return token, nil
}
