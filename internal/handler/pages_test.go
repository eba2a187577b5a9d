package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestPages(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   []string
	}{
		{"/blog", http.StatusOK, []string{"Explore Our Blog", "Home Goods", "Best TVs of 2024"}},
		{"/blog/category/books", http.StatusOK, []string{"Category: Books", "Must-Read Novels of the Year", "https://www.amazon.com/must-read-novels"}},
		{"/blog/category/garden", http.StatusOK, []string{"No posts found in this category."}},
		{"/blog/post/cozy-blankets", http.StatusOK, []string{"Top 5 Cozy Blankets for Winter", "Buy on Amazon"}},
		{"/blog/post/nope", http.StatusNotFound, []string{"Post Not Found"}},
		{"/pricing", http.StatusOK, []string{"$9.99", "Manage up to 50 links", "MOST POPULAR", "Includes AI features and more links."}},
		{"/about", http.StatusOK, []string{"About AffiliateLink Hub", "Our Mission"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.client().get(t, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}
