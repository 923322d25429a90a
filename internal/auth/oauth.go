package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"library-client/internal/api"
	"library-client/internal/models"
)

// OAuthClient talks to the token endpoints. Grants are anonymous; revoke
// and /me go through an authenticated client.
type OAuthClient struct {
	anon   *api.Client
	authed *api.Client
}

func (o *OAuthClient) password(ctx context.Context, username, password string) (tokenResponse, error) {
	return o.grant(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
}

func (o *OAuthClient) refresh(ctx context.Context, refreshToken string) (tokenResponse, error) {
	return o.grant(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

func (o *OAuthClient) grant(ctx context.Context, form url.Values) (tokenResponse, error) {
	var tr tokenResponse
	resp, err := o.anon.PostForm(ctx, "/token", form)
	if err != nil {
		return tr, err
	}
	if err := json.Unmarshal(resp.Data, &tr); err != nil {
		return tr, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return tr, fmt.Errorf("token response carries no access_token")
	}
	return tr, nil
}

func (o *OAuthClient) revoke(ctx context.Context) error {
	_, err := o.authed.Delete(ctx, "/token")
	return err
}

func (o *OAuthClient) me(ctx context.Context) (models.User, error) {
	resp, err := o.authed.Get(ctx, "/me")
	if err != nil {
		return models.User{}, err
	}
	return models.ToUser(resp.Data)
}
