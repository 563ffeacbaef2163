package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/errs"
)

// OAuthProfile is the identity returned by a provider's userinfo endpoint.
type OAuthProfile struct {
	ProviderAccountID string
	Email             string
	Name              string
	Image             string
	EmailVerified     bool
}

type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	parse       func(body []byte) (OAuthProfile, error)
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's profile.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (OAuthProfile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, err)
	}
	resp, err := p.Config.Client(ctx, token).Do(req)
	if err != nil {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, fmt.Errorf("userinfo returned status %d", resp.StatusCode))
	}

	profile, err := p.parse(body)
	if err != nil {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, err)
	}
	if profile.Email == "" || profile.ProviderAccountID == "" {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, fmt.Errorf("profile is missing id or email"))
	}
	// Sessions are keyed by email, so an unverified address could claim any account.
	if !profile.EmailVerified {
		return OAuthProfile{}, errs.NewOAuthExchangeError(p.Name, fmt.Errorf("email %q is not verified", profile.Email))
	}
	profile.Email = strings.ToLower(profile.Email)
	return profile, nil
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		parse: func(body []byte) (OAuthProfile, error) {
			var info struct {
				Sub           string `json:"sub"`
				Email         string `json:"email"`
				EmailVerified bool   `json:"email_verified"`
				Name          string `json:"name"`
				Picture       string `json:"picture"`
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return OAuthProfile{}, err
			}
			return OAuthProfile{
				ProviderAccountID: info.Sub,
				Email:             info.Email,
				Name:              info.Name,
				Image:             info.Picture,
				EmailVerified:     info.EmailVerified,
			}, nil
		},
	}
}

func NewDiscordProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "discord",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Discord,
			Scopes:       []string{"identify", "email"},
		},
		UserInfoURL: "https://discord.com/api/users/@me",
		parse: func(body []byte) (OAuthProfile, error) {
			var info struct {
				ID         string `json:"id"`
				Username   string `json:"username"`
				GlobalName string `json:"global_name"`
				Email      string `json:"email"`
				Avatar     string `json:"avatar"`
				Verified   bool   `json:"verified"`
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return OAuthProfile{}, err
			}
			profile := OAuthProfile{
				ProviderAccountID: info.ID,
				Email:             info.Email,
				Name:              info.GlobalName,
				EmailVerified:     info.Verified,
			}
			if profile.Name == "" {
				profile.Name = info.Username
			}
			if info.Avatar != "" {
				profile.Image = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", info.ID, info.Avatar)
			}
			return profile, nil
		},
	}
}

// OAuthProviders are the identity providers with credentials configured.
type OAuthProviders map[string]*OAuthProvider

func NewOAuthProviders(cfg config.Config) OAuthProviders {
	backendURL := strings.TrimSuffix(config.GetString(cfg, "BACKEND_URL", "http://localhost:8080"), "/")
	callback := func(name string) string {
		return fmt.Sprintf("%s/auth/%s/callback", backendURL, name)
	}

	providers := OAuthProviders{}
	if id := config.GetString(cfg, "GOOGLE_CLIENT_ID", ""); id != "" {
		providers["google"] = NewGoogleProvider(id, config.GetString(cfg, "GOOGLE_CLIENT_SECRET", ""), callback("google"))
	}
	if id := config.GetString(cfg, "DISCORD_CLIENT_ID", ""); id != "" {
		providers["discord"] = NewDiscordProvider(id, config.GetString(cfg, "DISCORD_CLIENT_SECRET", ""), callback("discord"))
	}
	return providers
}

func (p OAuthProviders) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p OAuthProviders) Get(name string) (*OAuthProvider, error) {
	provider, ok := p[name]
	if !ok {
		return nil, errs.NewUnknownProviderError(name)
	}
	return provider, nil
}
