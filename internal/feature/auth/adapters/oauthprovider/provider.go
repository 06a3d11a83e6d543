// Package oauthprovider implements OAuth2 authorization-code clients (with PKCE) for external login.
package oauthprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/feature/auth/usecase"
	platformhttp "kanban_backend/internal/platform/http"
)

// maxProfileBytes caps provider profile responses.
const maxProfileBytes = 1 << 20

// Endpoints groups the provider URLs. Tests point them at an httptest.Server.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	// EmailsURL is only used by GitHub when the profile has no public email.
	EmailsURL string
}

// Credentials are the registered client settings for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// profileParser turns the userinfo response into a profile.
type profileParser func(ctx context.Context, p *Provider, client *http.Client, body []byte) (*entity.ExternalProfile, error)

// Provider is an OAuth2 client for one external identity provider.
type Provider struct {
	name       string
	conf       *oauth2.Config
	endpoints  Endpoints
	httpClient *http.Client
	parse      profileParser
}

var _ usecase.ProviderClient = (*Provider)(nil)

// Name returns the registration id ("google", "github").
func (p *Provider) Name() string { return p.name }

// AuthCodeURL returns the consent URL carrying state and an S256 code challenge.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// FetchProfile exchanges the code (sending the PKCE verifier) and reads the user's profile.
func (p *Provider) FetchProfile(ctx context.Context, code, verifier string) (*entity.ExternalProfile, error) {
	ctx = platformhttp.WithOAuth2Client(ctx, p.httpClient)

	tok, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := p.conf.Client(ctx, tok)
	body, err := getJSON(ctx, client, p.endpoints.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	profile, err := p.parse(ctx, p, client, body)
	if err != nil {
		return nil, err
	}
	if profile.Subject == "" {
		return nil, errors.New("provider profile has no subject")
	}
	profile.Provider = p.name
	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
}

func newProvider(name string, creds Credentials, ep Endpoints, scopes []string, client *http.Client, parse profileParser) *Provider {
	return &Provider{
		name: name,
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  ep.AuthURL,
				TokenURL: ep.TokenURL,
			},
		},
		endpoints:  ep,
		httpClient: client,
		parse:      parse,
	}
}

// GoogleEndpoints are the production Google endpoints.
var GoogleEndpoints = Endpoints{
	AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:    "https://oauth2.googleapis.com/token",
	UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
}

// GitHubEndpoints are the production GitHub endpoints.
var GitHubEndpoints = Endpoints{
	AuthURL:     "https://github.com/login/oauth/authorize",
	TokenURL:    "https://github.com/login/oauth/access_token",
	UserInfoURL: "https://api.github.com/user",
	EmailsURL:   "https://api.github.com/user/emails",
}

// NewGoogle creates the Google provider (OpenID Connect userinfo).
func NewGoogle(creds Credentials, ep Endpoints, client *http.Client) *Provider {
	return newProvider("google", creds, ep, []string{"openid", "profile", "email"}, client, parseGoogle)
}

// NewGitHub creates the GitHub provider.
func NewGitHub(creds Credentials, ep Endpoints, client *http.Client) *Provider {
	return newProvider("github", creds, ep, []string{"read:user", "user:email"}, client, parseGitHub)
}

func parseGoogle(_ context.Context, _ *Provider, _ *http.Client, body []byte) (*entity.ExternalProfile, error) {
	var payload struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode google userinfo: %w", err)
	}

	email := payload.Email
	if payload.EmailVerified != nil && !*payload.EmailVerified {
		email = ""
	}
	return &entity.ExternalProfile{
		Subject:   payload.Sub,
		Email:     email,
		Name:      firstNonEmpty(payload.Name, payload.Email),
		AvatarURL: payload.Picture,
	}, nil
}

func parseGitHub(ctx context.Context, p *Provider, client *http.Client, body []byte) (*entity.ExternalProfile, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}

	email := payload.Email
	if email == "" && p.endpoints.EmailsURL != "" {
		// The public profile omits private addresses; ask for the primary verified one.
		primary, err := githubPrimaryEmail(ctx, client, p.endpoints.EmailsURL)
		if err != nil {
			return nil, err
		}
		email = primary
	}

	subject := ""
	if payload.ID != 0 {
		subject = strconv.FormatInt(payload.ID, 10)
	}
	return &entity.ExternalProfile{
		Subject:   subject,
		Email:     email,
		Name:      firstNonEmpty(payload.Name, payload.Login),
		AvatarURL: payload.AvatarURL,
	}, nil
}

func githubPrimaryEmail(ctx context.Context, client *http.Client, url string) (string, error) {
	body, err := getJSON(ctx, client, url)
	if err != nil {
		return "", fmt.Errorf("fetch github emails: %w", err)
	}
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("decode github emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
