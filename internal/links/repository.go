// Package links owns the affiliate-link collection. The Repository is the
// only writer; pages and the JSON API call its four operations and render
// the results.
package links

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/affilinks/internal/metrics"
	"github.com/joestump/affilinks/internal/store"
)

// LinkInput holds the content fields of a new link.
type LinkInput struct {
	ProductName  string
	Description  string
	ImageURL     string
	AffiliateURL string
}

// ListCache holds the rendered list view between writes. Implementations
// live in internal/cache.
//
// Invalidate advances the cache generation. Set stores rows only when gen
// is still the current generation, so a List that read the store before a
// write committed cannot put its rows back after the write's Invalidate.
type ListCache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context) ([]*store.AffiliateLink, bool, error)
	Set(ctx context.Context, gen uint64, links []*store.AffiliateLink) error
	Invalidate(ctx context.Context) error
}

// Repository implements list, create, update and delete over a
// store.LinkStoreIface with seed fallback and seed protection.
type Repository struct {
	store store.LinkStoreIface
	cache ListCache
	log   *zap.Logger

	// Now is the clock used for CreatedAt and UpdatedAt.
	Now func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithCache attaches a list cache. Without one every List hits the store.
func WithCache(c ListCache) Option {
	return func(r *Repository) { r.cache = c }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Repository backed by s.
func New(s store.LinkStoreIface, opts ...Option) *Repository {
	r := &Repository{
		store: s,
		log:   zap.NewNop(),
		Now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) available() bool {
	return r.store != nil && r.store.Available()
}

// List returns every link, newest first. An unavailable or empty store
// yields the built-in seed links instead of an error.
func (r *Repository) List(ctx context.Context) ([]*store.AffiliateLink, error) {
	if !r.available() {
		metrics.ListFallbacksTotal.WithLabelValues("unavailable").Inc()
		return Seeds(), nil
	}

	// gen must be read before the store so a concurrent write bumps it.
	var gen uint64
	cacheable := false
	if r.cache != nil {
		if g, err := r.cache.Generation(ctx); err != nil {
			metrics.ListCacheTotal.WithLabelValues("error").Inc()
			r.log.Warn("list cache generation read failed", zap.Error(err))
		} else {
			gen, cacheable = g, true
			cached, ok, err := r.cache.Get(ctx)
			switch {
			case err != nil:
				metrics.ListCacheTotal.WithLabelValues("error").Inc()
				r.log.Warn("list cache read failed", zap.Error(err))
			case ok:
				metrics.ListCacheTotal.WithLabelValues("hit").Inc()
				return cached, nil
			default:
				metrics.ListCacheTotal.WithLabelValues("miss").Inc()
			}
		}
	}

	rows, err := r.store.List(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			metrics.ListFallbacksTotal.WithLabelValues("unavailable").Inc()
			return Seeds(), nil
		}
		return nil, storeError("list", "", err)
	}
	if len(rows) == 0 {
		metrics.ListFallbacksTotal.WithLabelValues("empty").Inc()
		return Seeds(), nil
	}
	for _, l := range rows {
		Normalize(l)
	}

	if cacheable {
		if err := r.cache.Set(ctx, gen, rows); err != nil {
			metrics.ListCacheTotal.WithLabelValues("error").Inc()
			r.log.Warn("list cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// Get returns one link read straight from the store, bypassing the list
// cache. Built-in links are served from memory.
func (r *Repository) Get(ctx context.Context, id string) (*store.AffiliateLink, error) {
	if IsSeedID(id) {
		for _, l := range Seeds() {
			if l.ID == id {
				return l, nil
			}
		}
		return nil, &Error{Op: "get", ID: id, Kind: NotFound, Err: store.ErrNotFound}
	}
	if !r.available() {
		return nil, &Error{Op: "get", ID: id, Kind: StoreUnavailable, Err: store.ErrUnavailable}
	}
	l, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get", id, err)
	}
	return Normalize(l), nil
}

// Create stores a new link owned by principalID and returns its id.
// Any authenticated principal may create.
func (r *Repository) Create(ctx context.Context, principalID string, in LinkInput) (string, error) {
	if principalID == "" {
		return "", r.fail(&Error{Op: "create", Kind: Unauthenticated, Err: ErrNoPrincipal})
	}
	if !r.available() {
		return "", r.fail(&Error{Op: "create", Kind: StoreUnavailable, Err: store.ErrUnavailable})
	}

	now := r.Now()
	l := &store.AffiliateLink{
		ID:           uuid.New().String(),
		ProductName:  in.ProductName,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		AffiliateURL: in.AffiliateURL,
		UserID:       principalID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.Insert(ctx, l); err != nil {
		return "", r.fail(storeError("create", "", err))
	}
	r.succeeded(ctx, "create")
	return l.ID, nil
}

// Update applies patch to the link with id and stamps UpdatedAt.
// Built-in links are rejected before the store is touched.
func (r *Repository) Update(ctx context.Context, id string, patch store.LinkPatch) error {
	if IsSeedID(id) {
		return r.fail(&Error{Op: "update", ID: id, Kind: Forbidden, Err: ErrDefaultLink})
	}
	if !r.available() {
		return r.fail(&Error{Op: "update", ID: id, Kind: StoreUnavailable, Err: store.ErrUnavailable})
	}

	patch.UpdatedAt = r.Now()
	if err := r.store.Update(ctx, id, patch); err != nil {
		return r.fail(storeError("update", id, err))
	}
	r.succeeded(ctx, "update")
	return nil
}

// Delete removes the link with id. Deleting a link that does not exist
// succeeds. Built-in links are rejected before the store is touched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if IsSeedID(id) {
		return r.fail(&Error{Op: "delete", ID: id, Kind: Forbidden, Err: ErrDefaultLink})
	}
	if !r.available() {
		return r.fail(&Error{Op: "delete", ID: id, Kind: StoreUnavailable, Err: store.ErrUnavailable})
	}

	err := r.store.Delete(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return r.fail(storeError("delete", id, err))
	}
	r.succeeded(ctx, "delete")
	return nil
}

// succeeded records a committed write and drops the cached list. A cache
// failure is logged; the write already happened.
func (r *Repository) succeeded(ctx context.Context, op string) {
	metrics.LinkMutationsTotal.WithLabelValues(op, "ok").Inc()
	if r.cache == nil {
		return
	}
	metrics.ListCacheTotal.WithLabelValues("invalidate").Inc()
	if err := r.cache.Invalidate(ctx); err != nil {
		metrics.ListCacheTotal.WithLabelValues("error").Inc()
		r.log.Warn("list cache invalidation failed", zap.String("op", op), zap.Error(err))
	}
}

func (r *Repository) fail(err *Error) error {
	metrics.LinkMutationsTotal.WithLabelValues(err.Op, err.Kind.String()).Inc()
	return err
}

// storeError classifies a store failure.
func storeError(op, id string, err error) *Error {
	kind := Unexpected
	switch {
	case errors.Is(err, store.ErrNotFound):
		kind = NotFound
	case errors.Is(err, store.ErrPermissionDenied):
		kind = Forbidden
	case errors.Is(err, store.ErrUnavailable):
		kind = StoreUnavailable
	}
	return &Error{Op: op, ID: id, Kind: kind, Err: err}
}
