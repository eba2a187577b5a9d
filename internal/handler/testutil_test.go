package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/testutil"
)

const (
	adminEmail   = "admin@example.com"
	testPassword = "hunter22"
)

type testEnv struct {
	router    http.Handler
	links     *links.Repository
	linkStore *store.LinkStore
	users     *store.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithDescriber(t, nil)
}

// newTestEnvWithDescriber wires the full router over an in-memory SQLite
// database and in-memory sessions. opts configure the links repository.
func newTestEnvWithDescriber(t *testing.T, d llm.Describer, opts ...links.Option) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	ls := store.NewLinkStore(db)
	us := store.NewUserStore(db)
	ts := auth.NewSQLTokenStore(db)
	repo := links.New(ls, opts...)
	admins := auth.NewAdminSet(adminEmail)
	sm := auth.NewSessionManager(nil, "", time.Hour, false)

	router := NewRouter(Deps{
		SessionManager: sm,
		AuthMiddleware: auth.NewMiddleware(auth.NewLocalProvider(sm, us), admins),
		BearerAuth:     auth.NewBearerTokenMiddleware(ts, us, admins),
		Links:          repo,
		TokenStore:     ts,
		Describer:      d,
	})
	return &testEnv{router: router, links: repo, linkStore: ls, users: us}
}

// client carries cookies between requests like a browser would.
type client struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) client() *client {
	return &client{env: e, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.env.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return c.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(t, req)
}

// login creates a local account for email and signs the client in.
func (c *client) login(t *testing.T, email string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := c.env.users.Create(context.Background(), email, "", hash, "local")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	rec := c.postForm(t, "/auth/login", url.Values{"email": {email}, "password": {testPassword}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	return u
}

func (e *testEnv) seedLink(t *testing.T, ownerID, name string) string {
	t.Helper()
	id, err := e.links.Create(context.Background(), ownerID, links.LinkInput{
		ProductName:  name,
		Description:  "A perfectly fine product.",
		ImageURL:     "https://example.com/img.png",
		AffiliateURL: "https://example.com/buy",
	})
	if err != nil {
		t.Fatalf("seed link: %v", err)
	}
	return id
}

func linkForm(name string) url.Values {
	return url.Values{
		"product_name":  {name},
		"description":   {"A large ceramic mug for coffee."},
		"image_url":     {"https://example.com/mug.png"},
		"affiliate_url": {"https://example.com/buy/mug"},
	}
}
