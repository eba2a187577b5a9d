package links

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/joestump/affilinks/internal/cache"
	"github.com/joestump/affilinks/internal/store"
)

// fakeStore is an in-memory store.LinkStoreIface that counts writes.
type fakeStore struct {
	mu        sync.Mutex
	available bool
	rows      map[string]*store.AffiliateLink
	listErr   error
	writeErr  error
	writes    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{available: true, rows: map[string]*store.AffiliateLink{}}
}

func (f *fakeStore) Available() bool { return f.available }

func (f *fakeStore) List(_ context.Context) ([]*store.AffiliateLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*store.AffiliateLink, 0, len(f.rows))
	for _, l := range f.rows {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*store.AffiliateLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) Insert(_ context.Context, l *store.AffiliateLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, id string, p store.LinkPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	l, ok := f.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.ProductName != nil {
		l.ProductName = *p.ProductName
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
	if p.AffiliateURL != nil {
		l.AffiliateURL = *p.AffiliateURL
	}
	l.UpdatedAt = p.UpdatedAt
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeCache struct {
	gen         uint64
	links       []*store.AffiliateLink
	ok          bool
	invalidated int
	invErr      error
	genErr      error
}

func (c *fakeCache) Generation(context.Context) (uint64, error) {
	return c.gen, c.genErr
}

func (c *fakeCache) Get(context.Context) ([]*store.AffiliateLink, bool, error) {
	return c.links, c.ok, nil
}

func (c *fakeCache) Set(_ context.Context, gen uint64, links []*store.AffiliateLink) error {
	if gen == c.gen {
		c.links, c.ok = links, true
	}
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.gen++
	c.links, c.ok = nil, false
	return c.invErr
}

// pausingStore stops inside its first List call, after the rows have been
// read, until release is closed.
type pausingStore struct {
	*fakeStore
	read    chan<- struct{}
	release <-chan struct{}
}

func (p *pausingStore) List(ctx context.Context) ([]*store.AffiliateLink, error) {
	rows, err := p.fakeStore.List(ctx)
	if p.read != nil {
		read := p.read
		p.read = nil
		read <- struct{}{}
		<-p.release
	}
	return rows, err
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func ptr(s string) *string { return &s }

func assertSeeds(t *testing.T, got []*store.AffiliateLink) {
	t.Helper()
	want := []string{"default-link-1", "default-link-2", "default-link-3"}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d links, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
		if got[i].UserID != SeedUserID {
			t.Errorf("List()[%d].UserID = %q, want %q", i, got[i].UserID, SeedUserID)
		}
	}
}

func TestList_UnavailableStoreReturnsSeeds(t *testing.T) {
	fs := newFakeStore()
	fs.available = false
	repo := New(fs)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	assertSeeds(t, got)

	again, _ := repo.List(context.Background())
	assertSeeds(t, again)
}

func TestList_NilStoreReturnsSeeds(t *testing.T) {
	got, err := New(nil).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	assertSeeds(t, got)
}

func TestList_EmptyStoreReturnsSeeds(t *testing.T) {
	got, err := New(newFakeStore()).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	assertSeeds(t, got)
}

func TestList_ConnectionLostReturnsSeeds(t *testing.T) {
	fs := newFakeStore()
	fs.listErr = store.ErrUnavailable
	got, err := New(fs).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	assertSeeds(t, got)
}

func TestList_ReadFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"permission", store.ErrPermissionDenied, Forbidden},
		{"other", errors.New("syntax error near FROM"), Unexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.listErr = tt.err
			got, err := New(fs).List(context.Background())
			if err == nil {
				t.Fatalf("List returned %d links, want error", len(got))
			}
			if !IsKind(err, tt.want) {
				t.Errorf("KindOf(err) = %v, want %v", KindOf(err), tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap %v", err, tt.err)
			}
		})
	}
}

func TestList_NormalizesMissingFields(t *testing.T) {
	fs := newFakeStore()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fs.rows["x"] = &store.AffiliateLink{ID: "x", CreatedAt: created}

	got, err := New(fs).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	l := got[0]
	if l.ProductName != DefaultProductName {
		t.Errorf("ProductName = %q, want %q", l.ProductName, DefaultProductName)
	}
	if l.Description != DefaultDescription {
		t.Errorf("Description = %q, want %q", l.Description, DefaultDescription)
	}
	if l.ImageURL != DefaultImageURL {
		t.Errorf("ImageURL = %q, want %q", l.ImageURL, DefaultImageURL)
	}
	if l.AffiliateURL != DefaultAffiliateURL {
		t.Errorf("AffiliateURL = %q, want %q", l.AffiliateURL, DefaultAffiliateURL)
	}
	if !l.UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt = %v, want %v", l.UpdatedAt, created)
	}
}

func TestCreate_WithoutPrincipal(t *testing.T) {
	fs := newFakeStore()
	_, err := New(fs).Create(context.Background(), "", LinkInput{ProductName: "Mug"})
	if !IsKind(err, Unauthenticated) {
		t.Fatalf("Create(\"\") error = %v, want Unauthenticated", err)
	}
	if fs.writes != 0 {
		t.Errorf("store writes = %d, want 0", fs.writes)
	}
}

func TestCreate_StoreUnavailable(t *testing.T) {
	fs := newFakeStore()
	fs.available = false
	_, err := New(fs).Create(context.Background(), "u1", LinkInput{ProductName: "Mug"})
	if !IsKind(err, StoreUnavailable) {
		t.Fatalf("Create error = %v, want StoreUnavailable", err)
	}
	if fs.writes != 0 {
		t.Errorf("store writes = %d, want 0", fs.writes)
	}
}

func TestCreate_ThenListContainsLink(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs)
	repo.Now = stepClock()

	id, err := repo.Create(context.Background(), "u1", LinkInput{
		ProductName:  "Mug",
		Description:  "Ceramic",
		ImageURL:     "https://x/i.png",
		AffiliateURL: "https://x/a",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" || IsSeedID(id) {
		t.Fatalf("Create returned id %q", id)
	}

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List returned %d links, want 1", len(got))
	}
	l := got[0]
	if l.ID != id || l.ProductName != "Mug" || l.UserID != "u1" {
		t.Errorf("List()[0] = %+v", l)
	}
	if !l.CreatedAt.Equal(l.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", l.CreatedAt, l.UpdatedAt)
	}
}

func TestUpdate_SeedIsForbidden(t *testing.T) {
	fs := newFakeStore()
	err := New(fs).Update(context.Background(), "default-link-1", store.LinkPatch{ProductName: ptr("X")})
	if !IsKind(err, Forbidden) {
		t.Fatalf("Update(seed) error = %v, want Forbidden", err)
	}
	if !errors.Is(err, ErrDefaultLink) {
		t.Errorf("Update(seed) error does not wrap ErrDefaultLink")
	}
	if fs.writes != 0 {
		t.Errorf("store writes = %d, want 0", fs.writes)
	}
}

func TestUpdate_SeedCheckedBeforeAvailability(t *testing.T) {
	fs := newFakeStore()
	fs.available = false
	err := New(fs).Update(context.Background(), "default-link-2", store.LinkPatch{})
	if !errors.Is(err, ErrDefaultLink) {
		t.Fatalf("Update(seed) error = %v, want ErrDefaultLink", err)
	}
}

func TestUpdate_AdvancesUpdatedAtOnly(t *testing.T) {
	fs := newFakeStore()
	repo := New(fs)
	repo.Now = stepClock()
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", LinkInput{ProductName: "Old", Description: "d", ImageURL: "https://x/i", AffiliateURL: "https://x/a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := *fs.rows[id]

	if err := repo.Update(ctx, id, store.LinkPatch{ProductName: ptr("New Name")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.List(ctx)
	after := got[0]
	if after.ProductName != "New Name" {
		t.Errorf("ProductName = %q, want %q", after.ProductName, "New Name")
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", before.CreatedAt, after.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt %v not after %v", after.UpdatedAt, before.UpdatedAt)
	}
	if after.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", after.UserID, "u1")
	}
}

func TestUpdate_StoreFailures(t *testing.T) {
	tests := []struct {
		name     string
		writeErr error
		id       string
		want     Kind
	}{
		{"missing", nil, "nope", NotFound},
		{"permission", store.ErrPermissionDenied, "abc", Forbidden},
		{"other", errors.New("boom"), "abc", Unexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.rows["abc"] = &store.AffiliateLink{ID: "abc"}
			fs.writeErr = tt.writeErr
			err := New(fs).Update(context.Background(), tt.id, store.LinkPatch{ProductName: ptr("x")})
			if !IsKind(err, tt.want) {
				t.Fatalf("Update error = %v, want %v", err, tt.want)
			}
			if errors.Is(err, ErrDefaultLink) {
				t.Errorf("store failure must not look like the seed guard")
			}
		})
	}
}

func TestDelete_SeedIsForbidden(t *testing.T) {
	fs := newFakeStore()
	err := New(fs).Delete(context.Background(), "default-link-3")
	if !errors.Is(err, ErrDefaultLink) || !IsKind(err, Forbidden) {
		t.Fatalf("Delete(seed) error = %v, want Forbidden/ErrDefaultLink", err)
	}
	if fs.writes != 0 {
		t.Errorf("store writes = %d, want 0", fs.writes)
	}
}

func TestDelete_MissingSucceeds(t *testing.T) {
	if err := New(newFakeStore()).Delete(context.Background(), "nonexistent"); err != nil {
		t.Fatalf("Delete(nonexistent) = %v, want nil", err)
	}
}

func TestDelete_PermissionDenied(t *testing.T) {
	fs := newFakeStore()
	fs.writeErr = store.ErrPermissionDenied
	err := New(fs).Delete(context.Background(), "abc")
	if !IsKind(err, Forbidden) || !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Delete error = %v, want Forbidden wrapping ErrPermissionDenied", err)
	}
}

func TestCache_ReadThroughAndInvalidate(t *testing.T) {
	fs := newFakeStore()
	c := &fakeCache{}
	repo := New(fs, WithCache(c))
	repo.Now = stepClock()
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", LinkInput{ProductName: "A", Description: "d", ImageURL: "https://x/i", AffiliateURL: "https://x/a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.invalidated != 1 {
		t.Errorf("invalidated = %d after create, want 1", c.invalidated)
	}
	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !c.ok {
		t.Fatal("List did not populate the cache")
	}

	// A row written behind the repository stays invisible until a mutation.
	fs.rows["later"] = &store.AffiliateLink{ID: "later", CreatedAt: time.Now()}
	got, _ := repo.List(ctx)
	if len(got) != 1 {
		t.Fatalf("cached List returned %d links, want 1", len(got))
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = repo.List(ctx)
	if len(got) != 1 || got[0].ID != "later" {
		t.Fatalf("List after delete = %+v, want only %q", got, "later")
	}
}

func TestCache_InvalidationFailureDoesNotFailWrite(t *testing.T) {
	c := &fakeCache{invErr: errors.New("redis down")}
	repo := New(newFakeStore(), WithCache(c))
	if _, err := repo.Create(context.Background(), "u1", LinkInput{ProductName: "A"}); err != nil {
		t.Fatalf("Create with failing cache: %v", err)
	}
}

func TestCache_ListReadBeforeUpdateIsNotCached(t *testing.T) {
	fs := newFakeStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fs.rows["abc123"] = &store.AffiliateLink{
		ID: "abc123", ProductName: "Old Name", Description: "d",
		ImageURL: "https://x/i", AffiliateURL: "https://x/a",
		UserID: "u1", CreatedAt: base, UpdatedAt: base,
	}
	read := make(chan struct{})
	release := make(chan struct{})
	ps := &pausingStore{fakeStore: fs, read: read, release: release}
	repo := New(ps, WithCache(cache.NewMemory(time.Minute)))
	repo.Now = stepClock()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := repo.List(ctx)
		done <- err
	}()

	<-read
	if err := repo.Update(ctx, "abc123", store.LinkPatch{ProductName: ptr("New Name")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("concurrent List: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ProductName != "New Name" {
		t.Fatalf("List after committed Update = %+v, want ProductName %q", got, "New Name")
	}
}

func TestCache_GenerationFailureSkipsCache(t *testing.T) {
	fs := newFakeStore()
	fs.rows["a"] = &store.AffiliateLink{ID: "a", ProductName: "A", CreatedAt: time.Now()}
	c := &fakeCache{genErr: errors.New("redis down")}
	got, err := New(fs, WithCache(c)).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("List = %+v, want the stored row", got)
	}
	if c.ok {
		t.Error("List filled the cache without a generation")
	}
}

func TestGet(t *testing.T) {
	fs := newFakeStore()
	fs.rows["abc"] = &store.AffiliateLink{ID: "abc", ProductName: "Lamp", CreatedAt: time.Now()}
	c := &fakeCache{ok: true, links: []*store.AffiliateLink{{ID: "abc", ProductName: "Stale Lamp"}}}
	repo := New(fs, WithCache(c))
	ctx := context.Background()

	l, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.ProductName != "Lamp" {
		t.Errorf("ProductName = %q, want the stored %q", l.ProductName, "Lamp")
	}
	if l.Description != DefaultDescription {
		t.Errorf("Description = %q, want normalized default", l.Description)
	}

	if _, err := repo.Get(ctx, "missing"); !IsKind(err, NotFound) {
		t.Errorf("Get(missing) error = %v, want NotFound", err)
	}

	seed, err := repo.Get(ctx, "default-link-2")
	if err != nil || seed.ProductName != "Wireless Noise-Cancelling Headphones" {
		t.Errorf("Get(seed) = %+v, %v", seed, err)
	}
	if _, err := repo.Get(ctx, "default-link-9"); !IsKind(err, NotFound) {
		t.Errorf("Get(unknown seed) error = %v, want NotFound", err)
	}
}

func TestGet_StoreUnavailable(t *testing.T) {
	fs := newFakeStore()
	fs.available = false
	if _, err := New(fs).Get(context.Background(), "abc"); !IsKind(err, StoreUnavailable) {
		t.Fatalf("Get error = %v, want StoreUnavailable", err)
	}
}

func TestSeeds_AreCopies(t *testing.T) {
	a := Seeds()
	a[0].ProductName = "changed"
	b := Seeds()
	if b[0].ProductName == "changed" {
		t.Fatal("Seeds() shares state between calls")
	}
	for _, l := range b {
		if !l.UpdatedAt.Equal(l.CreatedAt) {
			t.Errorf("seed %s UpdatedAt %v != CreatedAt %v", l.ID, l.UpdatedAt, l.CreatedAt)
		}
	}
}
