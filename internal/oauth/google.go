// Package oauth implements the Google authorization-code flow: consent URL,
// HMAC-signed state, the code-for-token exchange and the profile fetch. It
// produces a provider Profile; user provisioning lives in the auth service.
package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"

	"github.com/tazhibayda/tasks-service/internal/apperr"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo?alt=json"

// Profile is the slice of the provider's userinfo response the service needs.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Google struct {
	cfg         *oauth2.Config
	stateKey    []byte
	client      *http.Client
	userinfoURL string
}

type Option func(*Google)

// WithEndpoints overrides the provider endpoints; used by tests to point the
// flow at a local fake.
func WithEndpoints(authURL, tokenURL, userinfoURL string) Option {
	return func(g *Google) {
		g.cfg.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		g.userinfoURL = userinfoURL
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *Google) { g.client = c }
}

func NewGoogle(clientID, clientSecret, redirectURI, stateSecret string, opts ...Option) *Google {
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     ggoogle.Endpoint,
		},
		stateKey: []byte(stateSecret),
		// both outbound calls share one bounded-timeout client
		client:      &http.Client{Timeout: 10 * time.Second},
		userinfoURL: defaultUserinfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MakeState signs a raw value so the callback can reject forged requests.
func (g *Google) MakeState(raw string) string {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *Google) VerifyState(got string) bool {
	i := strings.LastIndexByte(got, '.')
	if i < 0 {
		return false
	}
	raw := got[:i]
	sig, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return hmac.Equal(mac.Sum(nil), sig)
}

// AuthURL is a pure function of static configuration: the consent-screen URL
// with offline access and a forced consent prompt.
func (g *Google) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// checkConfig runs before any network call so a misconfigured deployment
// fails as a server error, never as a provider error.
func (g *Google) checkConfig() error {
	if g.cfg.ClientID == "" || g.cfg.ClientSecret == "" || g.cfg.RedirectURL == "" {
		return apperr.New(apperr.KindConfiguration, "google oauth is not configured")
	}
	return nil
}

// Exchange swaps the authorization code for an access token, then fetches
// the provider profile with it. The access token is used once and discarded.
// A response without access_token fails before any profile fetch is
// attempted. No retries: a provider failure surfaces immediately.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	if err := g.checkConfig(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, apperr.New(apperr.KindValidation, "missing authorization code")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOAuthExchange, "token exchange failed", err)
	}
	if tok.AccessToken == "" {
		return nil, apperr.New(apperr.KindOAuthExchange, "provider response missing access_token")
	}

	return g.fetchProfile(ctx, tok.AccessToken)
}

func (g *Google) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOAuthExchange, "build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOAuthExchange, "profile fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(apperr.KindOAuthExchange, "profile fetch failed",
			fmt.Errorf("userinfo status %d", resp.StatusCode))
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperr.Wrap(apperr.KindOAuthExchange, "malformed profile response", err)
	}
	if p.ID == "" || p.Email == "" {
		return nil, apperr.New(apperr.KindOAuthExchange, "profile response missing id or email")
	}
	return &p, nil
}
