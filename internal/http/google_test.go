package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	api "github.com/tazhibayda/tasks-service/internal/http"
	"github.com/tazhibayda/tasks-service/internal/oauth"
)

// googleEnv wires the router to a fake Google provider.
func googleEnv(t *testing.T, tokenStatus int, tokenBody map[string]any) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		_ = json.NewEncoder(w).Encode(tokenBody)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "108234", "name": "Ana", "email": "ana@gmail.com",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return newTestEnv(t, func(h *api.Handler) {
		h.Google = oauth.NewGoogle("cid", "csec", "http://localhost/cb", "state-secret",
			oauth.WithEndpoints(srv.URL+"/auth", srv.URL+"/token", srv.URL+"/userinfo"),
			oauth.WithHTTPClient(srv.Client()),
		)
	})
}

func Test_GoogleAuth_RedirectsToConsent(t *testing.T) {
	env := googleEnv(t, 200, map[string]any{"access_token": "at-123", "token_type": "Bearer"})

	w := env.do("GET", "/api/auth/google", "", nil)
	if w.Code != 302 {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "client_id=cid") || !strings.Contains(loc, "prompt=consent") {
		t.Fatalf("consent url: %s", loc)
	}
}

func Test_GoogleCallback_ProvisionsAndRedirects(t *testing.T) {
	env := googleEnv(t, 200, map[string]any{"access_token": "at-123", "token_type": "Bearer"})

	state := env.Google.MakeState("nonce")
	w := env.do("GET", "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), "", nil)
	if w.Code != 302 {
		t.Fatalf("callback expected 302, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "http://localhost:3000/dashboard" {
		t.Fatalf("redirect location: %s", got)
	}

	cookies := w.Result().Cookies()
	var authTok string
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
		if c.Name == "authToken" {
			authTok = c.Value
			if !c.HttpOnly || c.Path != "/" {
				t.Fatalf("authToken cookie flags: %+v", c)
			}
		}
	}
	for _, want := range []string{"authToken", "userId", "name"} {
		if !names[want] {
			t.Fatalf("missing %s cookie, got %v", want, names)
		}
	}

	u, err := env.Store.FindUserByEmail(context.Background(), "ana@gmail.com")
	if err != nil || u == nil {
		t.Fatalf("user not provisioned: %v %v", u, err)
	}
	if u.PasswordHash != "" || u.ExternalID != "108234" {
		t.Fatalf("provisioned user: %+v", u)
	}

	// the issued cookie token authenticates
	w = env.do("GET", "/api/auth/me", "", map[string]string{"Authorization": "Bearer " + authTok})
	if w.Code != 200 {
		t.Fatalf("token from callback rejected: %d %s", w.Code, w.Body.String())
	}

	// returning user: second callback logs in, no conflict
	state = env.Google.MakeState("nonce2")
	w = env.do("GET", "/api/auth/google/callback?code=def&state="+url.QueryEscape(state), "", nil)
	if w.Code != 302 {
		t.Fatalf("second callback: %d %s", w.Code, w.Body.String())
	}
}

func Test_GoogleCallback_BadState(t *testing.T) {
	env := googleEnv(t, 200, map[string]any{"access_token": "at-123", "token_type": "Bearer"})

	w := env.do("GET", "/api/auth/google/callback?code=abc&state=forged", "", nil)
	if w.Code != 401 {
		t.Fatalf("forged state expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func Test_GoogleCallback_ExchangeFailureNoRedirect(t *testing.T) {
	env := googleEnv(t, 500, map[string]any{"error": "server_error"})

	state := env.Google.MakeState("nonce")
	w := env.do("GET", "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), "", nil)
	if w.Code != 500 {
		t.Fatalf("exchange failure expected 500, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Fatalf("must not redirect on exchange failure, got %s", loc)
	}
}

func Test_GoogleAuth_NotConfigured(t *testing.T) {
	env := newTestEnv(t) // no Google wired

	if w := env.do("GET", "/api/auth/google", "", nil); w.Code != 500 {
		t.Fatalf("unconfigured google expected 500, got %d", w.Code)
	}
}
