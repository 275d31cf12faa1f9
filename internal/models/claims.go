package models

import "github.com/golang-jwt/jwt/v5"

// AccountClaims are the JWT claims carried by access and refresh tokens. The
// Address field is what the engine trusts as caller identity; authorization
// beyond that (owner, oracle, whitelists) is resolved by the registry.
type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID    uint   `json:"account_id"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	TokenVersion int    `json:"token_version"`
}
