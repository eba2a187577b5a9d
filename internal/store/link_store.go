package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// AffiliateLink is a product recommendation with its affiliate URL.
// Timestamps cross the JSON boundary as RFC 3339 strings.
type AffiliateLink struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"productName"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	AffiliateURL string    `json:"affiliateUrl"`
	UserID       string    `json:"userId,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// LinkPatch carries the mutable fields of an update. Nil fields are left
// untouched. Ownership and creation time are deliberately absent.
type LinkPatch struct {
	ProductName  *string
	Description  *string
	ImageURL     *string
	AffiliateURL *string
	UpdatedAt    time.Time
}

// Empty reports whether the patch changes no content field.
func (p LinkPatch) Empty() bool {
	return p.ProductName == nil && p.Description == nil && p.ImageURL == nil && p.AffiliateURL == nil
}

// linkRow mirrors the affiliate_links table. Every content column is
// nullable so partially written rows still scan.
type linkRow struct {
	ID           string         `db:"id"`
	ProductName  sql.NullString `db:"product_name"`
	Description  sql.NullString `db:"description"`
	ImageURL     sql.NullString `db:"image_url"`
	AffiliateURL sql.NullString `db:"affiliate_url"`
	UserID       sql.NullString `db:"user_id"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

func (r *linkRow) toLink() *AffiliateLink {
	return &AffiliateLink{
		ID:           r.ID,
		ProductName:  r.ProductName.String,
		Description:  r.Description.String,
		ImageURL:     r.ImageURL.String,
		AffiliateURL: r.AffiliateURL.String,
		UserID:       r.UserID.String,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

// LinkStore is the sqlx-backed implementation of LinkStoreIface.
// A LinkStore built over a nil *sqlx.DB reports itself unavailable.
type LinkStore struct {
	db *sqlx.DB
}

func NewLinkStore(db *sqlx.DB) *LinkStore {
	return &LinkStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *LinkStore) q(query string) string { return s.db.Rebind(query) }

// Available reports whether a database connection is configured.
func (s *LinkStore) Available() bool {
	return s != nil && s.db != nil
}

// List returns every affiliate link, newest first.
func (s *LinkStore) List(ctx context.Context) ([]*AffiliateLink, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	var rows []linkRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, product_name, description, image_url, affiliate_url, user_id, created_at, updated_at
		FROM affiliate_links
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, translateError(err)
	}
	links := make([]*AffiliateLink, 0, len(rows))
	for i := range rows {
		links = append(links, rows[i].toLink())
	}
	return links, nil
}

// GetByID returns the link matching id, or ErrNotFound.
func (s *LinkStore) GetByID(ctx context.Context, id string) (*AffiliateLink, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	var row linkRow
	err := s.db.GetContext(ctx, &row, s.q(`
		SELECT id, product_name, description, image_url, affiliate_url, user_id, created_at, updated_at
		FROM affiliate_links WHERE id = ?
	`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return row.toLink(), nil
}

// Insert writes l as a new row. The caller assigns the ID and timestamps.
func (s *LinkStore) Insert(ctx context.Context, l *AffiliateLink) error {
	if !s.Available() {
		return ErrUnavailable
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO affiliate_links (id, product_name, description, image_url, affiliate_url, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), l.ID, l.ProductName, l.Description, l.ImageURL, l.AffiliateURL, l.UserID, l.CreatedAt, l.UpdatedAt)
	return translateError(err)
}

// Update applies patch to the row matching id. user_id and created_at are
// never part of the statement. Returns ErrNotFound when no row matched.
func (s *LinkStore) Update(ctx context.Context, id string, patch LinkPatch) error {
	if !s.Available() {
		return ErrUnavailable
	}
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if patch.ProductName != nil {
		sets = append(sets, "product_name = ?")
		args = append(args, *patch.ProductName)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *patch.ImageURL)
	}
	if patch.AffiliateURL != nil {
		sets = append(sets, "affiliate_url = ?")
		args = append(args, *patch.AffiliateURL)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, patch.UpdatedAt, id)

	query := fmt.Sprintf(`UPDATE affiliate_links SET %s WHERE id = ?`, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return translateError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return translateError(err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row matching id. Returns ErrNotFound when no row matched.
func (s *LinkStore) Delete(ctx context.Context, id string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM affiliate_links WHERE id = ?`), id)
	if err != nil {
		return translateError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return translateError(err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored links.
func (s *LinkStore) Count(ctx context.Context) (int, error) {
	if !s.Available() {
		return 0, ErrUnavailable
	}
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM affiliate_links`); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}
