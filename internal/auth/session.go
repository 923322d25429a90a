// Package auth owns the login session: the OAuth token grants, refresh before
// each REST call, revocation at logout and durable persistence.
package auth

import (
	"time"

	"library-client/pkg/jwt"
)

// Storage keys for session state.
const (
	KeyLoginData = "LOGIN_DATA"
	KeyLoginUser = "LOGIN_USER"
)

// refreshSkew treats a token this close to expiry as expired.
const refreshSkew = 5 * time.Second

// LoginData is the persisted session.
type LoginData struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expires      time.Time `json:"expires"`
	LoggedIn     bool      `json:"loggedIn"`
	Scope        string    `json:"scope"`
	Username     string    `json:"username"`
}

// Expired reports whether the access token is due for refresh at now.
// A zero Expires means the server gave no lifetime.
func (d LoginData) Expired(now time.Time) bool {
	if d.Expires.IsZero() {
		return false
	}
	return !now.Add(refreshSkew).Before(d.Expires)
}

// tokenResponse is the body of POST /token.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// loginData builds the session from a grant. prev supplies values a refresh
// response may omit.
func (t tokenResponse) loginData(username string, prev LoginData, now time.Time) LoginData {
	d := LoginData{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		LoggedIn:     true,
		Scope:        t.Scope,
		Username:     username,
	}
	if d.RefreshToken == "" {
		d.RefreshToken = prev.RefreshToken
	}
	if d.Scope == "" {
		d.Scope = prev.Scope
	}

	switch {
	case t.ExpiresIn > 0:
		d.Expires = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	default:
		if exp, err := jwt.ExpiresAtUnverified(t.AccessToken); err == nil {
			d.Expires = exp
		}
	}
	return d
}
