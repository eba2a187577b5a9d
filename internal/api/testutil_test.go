package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/joestump/affilinks/internal/api"
	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/testutil"
)

const adminEmail = "admin@example.com"

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router     http.Handler
	Links      *links.Repository
	LinkStore  *store.LinkStore
	UserStore  *store.UserStore
	TokenStore *auth.SQLTokenStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithDescriber(t, nil)
}

func newTestEnvWithDescriber(t *testing.T, d llm.Describer) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	ls := store.NewLinkStore(db)
	us := store.NewUserStore(db)
	ts := auth.NewSQLTokenStore(db)
	repo := links.New(ls)

	router := api.NewAPIRouter(api.Deps{
		BearerAuth: auth.NewBearerTokenMiddleware(ts, us, auth.NewAdminSet(adminEmail)),
		Links:      repo,
		TokenStore: ts,
		Describer:  d,
	})
	return &testEnv{
		Router:     router,
		Links:      repo,
		LinkStore:  ls,
		UserStore:  us,
		TokenStore: ts,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email string) *store.User {
	t.Helper()
	u, err := env.UserStore.Create(context.Background(), email, "Test User", "", "local")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedToken creates a real API token for a user and returns the plaintext Bearer value.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = env.TokenStore.Create(context.Background(), userID, "test-token", hash, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return plaintext
}

// seedLink inserts a link directly through the repository.
func seedLink(t *testing.T, env *testEnv, ownerID, name string) string {
	t.Helper()
	id, err := env.Links.Create(context.Background(), ownerID, links.LinkInput{
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

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
