package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/joestump/affilinks/internal/cache"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/store"
)

func TestHome_AnonymousSeesDefaults(t *testing.T) {
	env := newTestEnv(t)
	rec := env.client().get(t, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{"High-Performance Laptop", "Wireless Noise-Cancelling Headphones", "Ergonomic Office Chair"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Add Affiliate Link") {
		t.Error("anonymous visitor was offered the add form")
	}
}

func TestHome_AdminControls(t *testing.T) {
	env := newTestEnv(t)

	user := env.client()
	u := user.login(t, "alice@example.com")
	id := env.seedLink(t, u.ID, "Mug")

	body := user.get(t, "/").Body.String()
	if !strings.Contains(body, "Add Affiliate Link") {
		t.Error("signed-in user was not offered the add form")
	}
	if strings.Contains(body, "/links/"+id+"/edit") {
		t.Error("non-admin was offered edit controls")
	}

	admin := env.client()
	admin.login(t, adminEmail)
	if body := admin.get(t, "/").Body.String(); !strings.Contains(body, "/links/"+id+"/edit") {
		t.Error("admin was not offered edit controls")
	}
}

func TestLinks_CreateRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.client().postForm(t, "/links", linkForm("Mug"))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/login") {
		t.Errorf("Location = %q, want /auth/login...", loc)
	}
}

func TestLinks_Create(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	u := c.login(t, "alice@example.com")

	rec := c.postForm(t, "/links", linkForm("Mug"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	body := c.get(t, "/").Body.String()
	if !strings.Contains(body, "Affiliate link added successfully.") {
		t.Error("missing success flash")
	}
	all, err := env.links.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].ProductName != "Mug" || all[0].UserID != u.ID {
		t.Errorf("List = %+v", all)
	}
}

func TestLinks_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, "alice@example.com")

	form := linkForm("M")
	form.Set("affiliate_url", "not a url")
	rec := c.postForm(t, "/links", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	body := rec.Body.String()
	for _, want := range []string{"Product name must be at least 2 characters.", "Affiliate URL must be a valid URL."} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestLinks_UpdateNonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	u := c.login(t, "alice@example.com")
	id := env.seedLink(t, u.ID, "Original")

	req := httptest.NewRequest(http.MethodPut, "/links/"+id, strings.NewReader(linkForm("Hacked").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := c.do(t, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	l, err := env.linkStore.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if l.ProductName != "Original" {
		t.Errorf("ProductName = %q, want unchanged", l.ProductName)
	}
}

func TestLinks_AdminUpdate(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	admin := c.login(t, adminEmail)
	id := env.seedLink(t, admin.ID, "Old Name")

	if rec := c.get(t, "/links/"+id+"/edit"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Old Name") {
		t.Fatalf("edit page status = %d", rec.Code)
	}

	rec := c.postForm(t, "/links/"+id, linkForm("New Name"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	l, err := env.linkStore.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if l.ProductName != "New Name" {
		t.Errorf("ProductName = %q, want %q", l.ProductName, "New Name")
	}
	if l.UserID != admin.ID {
		t.Errorf("UserID changed to %q", l.UserID)
	}
}

func TestLinks_EditReadsCurrentRecord(t *testing.T) {
	env := newTestEnvWithDescriber(t, nil, links.WithCache(cache.NewMemory(time.Minute)))
	c := env.client()
	admin := c.login(t, adminEmail)
	id := env.seedLink(t, admin.ID, "Old Name")

	if body := c.get(t, "/").Body.String(); !strings.Contains(body, "Old Name") {
		t.Fatal("home page missing the new link")
	}
	// Written behind the repository, so the cached list still says Old Name.
	renamed := "Renamed Elsewhere"
	err := env.linkStore.Update(context.Background(), id, store.LinkPatch{ProductName: &renamed, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("store update: %v", err)
	}

	rec := c.get(t, "/links/"+id+"/edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), renamed) {
		t.Error("edit form was filled from a stale list")
	}
}

func TestLinks_EditDefaultLink(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, adminEmail)

	rec := c.get(t, "/links/default-link-1/edit")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if body := c.get(t, "/").Body.String(); !strings.Contains(body, "Default links cannot be modified.") {
		t.Error("missing default-link flash")
	}
}

func TestLinks_EditMissingLink(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, adminEmail)

	rec := c.get(t, "/links/does-not-exist/edit")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if body := c.get(t, "/").Body.String(); !strings.Contains(body, "That link no longer exists.") {
		t.Error("missing not-found flash")
	}
}

func TestLinks_AdminDeleteDefaultLink(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, adminEmail)

	rec := c.postForm(t, "/links/default-link-2/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	body := c.get(t, "/").Body.String()
	if !strings.Contains(body, "Default links cannot be deleted.") {
		t.Error("missing default-link flash")
	}
	if !strings.Contains(body, "Wireless Noise-Cancelling Headphones") {
		t.Error("default link disappeared")
	}
}

func TestLinks_AdminDeleteHTMX(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	admin := c.login(t, adminEmail)
	id := env.seedLink(t, admin.ID, "Mug")

	req := httptest.NewRequest(http.MethodDelete, "/links/"+id, nil)
	req.Header.Set("HX-Request", "true")
	rec := c.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	all, _ := env.links.List(context.Background())
	for _, l := range all {
		if l.ID == id {
			t.Error("link still listed after delete")
		}
	}
}
