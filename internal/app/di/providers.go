package di

import (
	"net/http"

	"kanban_backend/internal/feature/auth/adapters/oauthprovider"
	"kanban_backend/internal/feature/auth/usecase"
	"kanban_backend/internal/platform/config"
	platformhttp "kanban_backend/internal/platform/http"
)

// NewProviders creates the OAuth2 clients whose credentials are configured.
// Providers without a client id are left out, so their routes answer 404.
func NewProviders(cfg config.Config) map[string]usecase.ProviderClient {
	client := platformhttp.NewHTTPClient(cfg.ProviderTimeout)
	return newProviders(cfg.OAuth, client, oauthprovider.GoogleEndpoints, oauthprovider.GitHubEndpoints)
}

func newProviders(cfg config.OAuthConfig, client *http.Client, google, github oauthprovider.Endpoints) map[string]usecase.ProviderClient {
	providers := map[string]usecase.ProviderClient{}
	if cfg.GoogleClientID != "" {
		providers["google"] = oauthprovider.NewGoogle(oauthprovider.Credentials{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
		}, google, client)
	}
	if cfg.GitHubClientID != "" {
		providers["github"] = oauthprovider.NewGitHub(oauthprovider.Credentials{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURI:  cfg.GitHubRedirectURI,
		}, github, client)
	}
	return providers
}
