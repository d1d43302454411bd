package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/model"
)

// ErrUpstream wraps provider-side failures surfaced to handlers as 502 with a
// safe message.
var ErrUpstream = errors.New("upstream provider error")

// providerEndpoints are the OAuth2 endpoints per provider. Revoke may be empty
// when a provider offers no revocation endpoint.
type providerEndpoints struct {
	AuthorizeURL string
	TokenURL     string
	RevokeURL    string
}

var endpoints = map[model.Provider]providerEndpoints{
	model.ProviderGoogle: {
		AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		RevokeURL:    "https://oauth2.googleapis.com/revoke",
	},
	model.ProviderMicrosoft: {
		AuthorizeURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	},
	model.ProviderSlack: {
		AuthorizeURL: "https://slack.com/oauth/v2/authorize",
		TokenURL:     "https://slack.com/api/oauth.v2.access",
		RevokeURL:    "https://slack.com/api/auth.revoke",
	},
	model.ProviderHubSpot: {
		AuthorizeURL: "https://app.hubspot.com/oauth/authorize",
		TokenURL:     "https://api.hubapi.com/oauth/v1/token",
	},
	model.ProviderPipedrive: {
		AuthorizeURL: "https://oauth.pipedrive.com/oauth/authorize",
		TokenURL:     "https://oauth.pipedrive.com/oauth/token",
	},
}

// tokenResponse is the wire shape of a provider's token endpoint reply.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

func (t *tokenResponse) grant() *TokenGrant {
	return &TokenGrant{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Scope:        t.Scope,
		ExpiresIn:    t.ExpiresIn,
	}
}

// TokenGrant is a provider token endpoint reply, shared by the code and
// refresh grants.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresIn    int
}

// OAuthClient speaks the OAuth2 code/refresh/revoke grants to a provider.
type OAuthClient interface {
	AuthorizeURL(provider model.Provider, state string, scopes []string) (string, error)
	ExchangeCode(ctx context.Context, provider model.Provider, code string) (*TokenGrant, error)
	RefreshGrant(ctx context.Context, provider model.Provider, refreshToken string) (*TokenGrant, error)
	Revoke(ctx context.Context, provider model.Provider, accessToken string) error
}

type restyOAuthClient struct {
	http      *resty.Client
	providers map[string]config.ProviderConfig
}

func NewOAuthClient(providers map[string]config.ProviderConfig) OAuthClient {
	return &restyOAuthClient{
		http:      resty.New().SetTimeout(15 * time.Second),
		providers: providers,
	}
}

func (c *restyOAuthClient) creds(provider model.Provider) (config.ProviderConfig, providerEndpoints, error) {
	pc, ok := c.providers[string(provider)]
	if !ok {
		return config.ProviderConfig{}, providerEndpoints{}, fmt.Errorf("provider %s is not configured", provider)
	}
	ep, ok := endpoints[provider]
	if !ok {
		return config.ProviderConfig{}, providerEndpoints{}, fmt.Errorf("unknown provider %s", provider)
	}
	return pc, ep, nil
}

func (c *restyOAuthClient) AuthorizeURL(provider model.Provider, state string, scopes []string) (string, error) {
	pc, ep, err := c.creds(provider)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", pc.ClientID)
	q.Set("redirect_uri", pc.RedirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	if len(scopes) > 0 {
		q.Set("scope", strings.Join(scopes, " "))
	}
	// Google only returns a refresh token with offline access consent.
	if provider == model.ProviderGoogle {
		q.Set("access_type", "offline")
		q.Set("prompt", "consent")
	}

	return ep.AuthorizeURL + "?" + q.Encode(), nil
}

func (c *restyOAuthClient) ExchangeCode(ctx context.Context, provider model.Provider, code string) (*TokenGrant, error) {
	pc, ep, err := c.creds(provider)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"client_id":     pc.ClientID,
			"client_secret": pc.ClientSecret,
			"redirect_uri":  pc.RedirectURI,
		}).
		SetResult(&token).
		Post(ep.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s token exchange: %v", ErrUpstream, provider, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s token endpoint returned %d", ErrUpstream, provider, resp.StatusCode())
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s token endpoint returned no access token", ErrUpstream, provider)
	}
	return token.grant(), nil
}

func (c *restyOAuthClient) RefreshGrant(ctx context.Context, provider model.Provider, refreshToken string) (*TokenGrant, error) {
	pc, ep, err := c.creds(provider)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     pc.ClientID,
			"client_secret": pc.ClientSecret,
		}).
		SetResult(&token).
		Post(ep.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s token refresh: %v", ErrUpstream, provider, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s refresh endpoint returned %d", ErrUpstream, provider, resp.StatusCode())
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s refresh returned no access token", ErrUpstream, provider)
	}
	return token.grant(), nil
}

func (c *restyOAuthClient) Revoke(ctx context.Context, provider model.Provider, accessToken string) error {
	_, ep, err := c.creds(provider)
	if err != nil {
		return err
	}
	if ep.RevokeURL == "" {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"token": accessToken}).
		Post(ep.RevokeURL)
	if err != nil {
		return fmt.Errorf("%w: %s revocation: %v", ErrUpstream, provider, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s revocation returned %d", ErrUpstream, provider, resp.StatusCode())
	}
	return nil
}
