package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/oauth"
)

// fakeProvider plays the token and userinfo endpoints and counts hits.
type fakeProvider struct {
	srv          *httptest.Server
	tokenHits    atomic.Int32
	userinfoHits atomic.Int32

	tokenResponse map[string]any
	profile       map[string]any
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		tokenResponse: map[string]any{"access_token": "at-123", "token_type": "Bearer"},
		profile:       map[string]any{"id": "108234", "name": "Ana", "email": "ana@gmail.com"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenHits.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint called with %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("token endpoint body: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.FormValue("code"); got == "" {
			t.Error("token endpoint called without code")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.tokenResponse)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		p.userinfoHits.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer at-123" {
			t.Errorf("userinfo auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.profile)
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) google(clientID, clientSecret, redirect string) *oauth.Google {
	return oauth.NewGoogle(clientID, clientSecret, redirect, "state-secret",
		oauth.WithEndpoints(p.srv.URL+"/auth", p.srv.URL+"/token", p.srv.URL+"/userinfo"),
		oauth.WithHTTPClient(p.srv.Client()),
	)
}

func TestExchange_FetchesProfile(t *testing.T) {
	p := newFakeProvider(t)
	g := p.google("cid", "csec", "http://localhost/cb")

	profile, err := g.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "108234", profile.ID)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, "ana@gmail.com", profile.Email)
	assert.Equal(t, int32(1), p.tokenHits.Load())
	assert.Equal(t, int32(1), p.userinfoHits.Load())
}

func TestExchange_MissingConfigNoNetworkCall(t *testing.T) {
	p := newFakeProvider(t)
	g := p.google("", "", "")

	_, err := g.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
	assert.Equal(t, int32(0), p.tokenHits.Load())
	assert.Equal(t, int32(0), p.userinfoHits.Load())
}

func TestExchange_MissingAccessTokenSkipsProfileFetch(t *testing.T) {
	p := newFakeProvider(t)
	p.tokenResponse = map[string]any{"token_type": "Bearer"}
	g := p.google("cid", "csec", "http://localhost/cb")

	_, err := g.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOAuthExchange, apperr.KindOf(err))
	assert.Equal(t, int32(1), p.tokenHits.Load())
	assert.Equal(t, int32(0), p.userinfoHits.Load())
}

func TestExchange_ProfileMissingFields(t *testing.T) {
	p := newFakeProvider(t)
	p.profile = map[string]any{"name": "Ana"}
	g := p.google("cid", "csec", "http://localhost/cb")

	_, err := g.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOAuthExchange, apperr.KindOf(err))
}

func TestExchange_EmptyCode(t *testing.T) {
	p := newFakeProvider(t)
	g := p.google("cid", "csec", "http://localhost/cb")

	_, err := g.Exchange(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int32(0), p.tokenHits.Load())
}

func TestAuthURL_ConsentParams(t *testing.T) {
	g := oauth.NewGoogle("cid", "csec", "http://localhost/cb", "state-secret")

	raw := g.AuthURL("some-state")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Contains(t, q.Get("scope"), "profile")
}

func TestState_SignAndVerify(t *testing.T) {
	g := oauth.NewGoogle("cid", "csec", "http://localhost/cb", "state-secret")

	state := g.MakeState("nonce-1")
	assert.True(t, g.VerifyState(state))
	assert.False(t, g.VerifyState("nonce-1.forged"))
	assert.False(t, g.VerifyState("no-signature"))

	other := oauth.NewGoogle("cid", "csec", "http://localhost/cb", "another-secret")
	assert.False(t, other.VerifyState(state))
}
