package hospitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ExchangeCode trades the authorization code from the dashboard callback
// for an access/refresh token pair. Client credentials travel in the
// body; this is the one call that carries no bearer token.
func (c *Client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*TokenResponse, error) {
	return c.requestToken(ctx, tokenRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  redirectURI,
	})
}

// RefreshAccessToken rotates an expired access token.
func (c *Client) RefreshAccessToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, tokenRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
}

func (c *Client) requestToken(ctx context.Context, body tokenRequest) (*TokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, "/oauth/token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleHTTPError(resp)
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &tok, nil
}
