package service

import "crypto/subtle"

// Authenticator checks the shared server password that accompanies every
// owner token. There are no per-owner secrets.
type Authenticator struct {
	password []byte
}

func NewAuthenticator(password string) *Authenticator {
	return &Authenticator{password: []byte(password)}
}

// Authenticate returns the owner token on success.
func (a *Authenticator) Authenticate(token, password string) (string, error) {
	if token == "" || password == "" {
		return "", ErrAuthMissing
	}
	if len(a.password) == 0 || subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		return "", ErrAuthInvalid
	}
	return token, nil
}
