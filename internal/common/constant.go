package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the gateway accepts.
const BearerScheme = "Bearer"
