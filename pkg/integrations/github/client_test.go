package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bjoernmichaelsen/ghdepup/pkg/cache"
	"github.com/bjoernmichaelsen/ghdepup/pkg/integrations"
)

func testClient(t *testing.T, serverURL string, maxPages int) *TagClient {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewTagClient(Config{
		Token:     "secret",
		BaseURL:   serverURL,
		Cache:     c,
		CacheTTL:  time.Hour,
		MaxPages:  maxPages,
		UserAgent: "ghdepup/test",
	})
	if err != nil {
		t.Fatalf("NewTagClient() error: %v", err)
	}
	return client
}

func tagPage(names ...string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf(`{"name":%q,"commit":{"sha":"abc"}}`, n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestFetchTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/hyperium/hyper/tags" {
			http.NotFound(w, r)
			return
		}
		checks := map[string]string{
			"Accept":               "application/vnd.github+json",
			"X-GitHub-Api-Version": "2022-11-28",
			"User-Agent":           "ghdepup/test",
			"Authorization":        "Bearer secret",
		}
		for k, want := range checks {
			if got := r.Header.Get(k); got != want {
				t.Errorf("header %s = %q, want %q", k, got, want)
			}
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, tagPage("v1.0.0", "v0.14.28", "docs"))
	}))
	defer server.Close()

	c := testClient(t, server.URL, 0)
	tags, err := c.FetchTags(context.Background(), "hyperium/hyper", false)
	if err != nil {
		t.Fatalf("FetchTags() error: %v", err)
	}
	if want := []string{"v1.0.0", "v0.14.28", "docs"}; !slices.Equal(tags, want) {
		t.Errorf("FetchTags() = %v, want %v", tags, want)
	}
}

func TestFetchTagsPagination(t *testing.T) {
	full := make([]string, perPage)
	for i := range full {
		full[i] = fmt.Sprintf("v0.0.%d", i)
	}

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Query().Get("page") {
		case "1", "2":
			fmt.Fprint(w, tagPage(full...))
		case "3":
			fmt.Fprint(w, tagPage("v1.0.0"))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			fmt.Fprint(w, "[]")
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL, 0)
	tags, err := c.FetchTags(context.Background(), "owner/repo", false)
	if err != nil {
		t.Fatalf("FetchTags() error: %v", err)
	}
	if len(tags) != 2*perPage+1 || tags[len(tags)-1] != "v1.0.0" {
		t.Errorf("FetchTags() returned %d tags", len(tags))
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}

	limited := testClient(t, server.URL, 1)
	requests.Store(0)
	tags, err = limited.FetchTags(context.Background(), "owner/repo", false)
	if err != nil {
		t.Fatalf("FetchTags() error: %v", err)
	}
	if len(tags) != perPage || requests.Load() != 1 {
		t.Errorf("MaxPages=1: %d tags in %d requests", len(tags), requests.Load())
	}
}

func TestFetchTagsCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, tagPage("v1.0.0"))
	}))
	defer server.Close()

	c := testClient(t, server.URL, 0)
	ctx := context.Background()
	for range 2 {
		if _, err := c.FetchTags(ctx, "owner/repo", false); err != nil {
			t.Fatal(err)
		}
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 (second call cached)", n)
	}

	if _, err := c.FetchTags(ctx, "owner/repo", true); err != nil {
		t.Fatal(err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2 after refresh", n)
	}
}

func TestFetchTagsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, integrations.ErrNotFound},
		{"bad credentials", http.StatusUnauthorized, `{"message":"Bad credentials"}`, integrations.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, integrations.ErrUnauthorized},
		{"not json", http.StatusOK, `<html>`, integrations.ErrMalformed},
		{"not an array", http.StatusOK, `{"name":"v1"}`, integrations.ErrMalformed},
		{"entry not object", http.StatusOK, `["v1.0.0"]`, integrations.ErrMalformed},
		{"entry without name", http.StatusOK, `[{"commit":{}}]`, integrations.ErrMalformed},
		{"name not string", http.StatusOK, `[{"name":1}]`, integrations.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			c := testClient(t, server.URL, 0)
			_, err := c.FetchTags(context.Background(), "owner/repo", false)
			if !errors.Is(err, tt.want) {
				t.Errorf("FetchTags() error = %v, want %v", err, tt.want)
			}
			if err != nil && !strings.Contains(err.Error(), "owner/repo") {
				t.Errorf("error %q should name the project", err)
			}
		})
	}
}

func TestFetchTagsInvalidProject(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:1", 0)
	_, err := c.FetchTags(context.Background(), "not-a-project", false)
	if !errors.Is(err, ErrInvalidProject) {
		t.Errorf("FetchTags() error = %v, want ErrInvalidProject", err)
	}
}

func TestNewTagClient(t *testing.T) {
	c, err := NewTagClient(Config{})
	if err != nil {
		t.Fatalf("NewTagClient() error: %v", err)
	}
	if c.baseURL != DefaultBaseURL || c.maxPages != DefaultMaxPages {
		t.Errorf("defaults = %q, %d", c.baseURL, c.maxPages)
	}

	c, err = NewTagClient(Config{BaseURL: "https://ghe.example.com/api/v3/"})
	if err != nil || c.baseURL != "https://ghe.example.com/api/v3" {
		t.Errorf("trailing slash not trimmed: %v, %v", c, err)
	}

	if _, err := NewTagClient(Config{BaseURL: "ftp://example.com"}); err == nil {
		t.Error("NewTagClient() should reject a non-http url")
	}
}

func TestParseProject(t *testing.T) {
	tests := []struct {
		ref     string
		want    Project
		wantErr bool
	}{
		{"hyperium/hyper", Project{"hyperium", "hyper"}, false},
		{" rust-lang/rust.vim ", Project{"rust-lang", "rust.vim"}, false},
		{"a/b_c", Project{"a", "b_c"}, false},
		{"hyper", Project{}, true},
		{"/hyper", Project{}, true},
		{"-bad/repo", Project{}, true},
		{"owner/", Project{}, true},
		{"owner/re/po", Project{}, true},
		{"owner/..", Project{}, true},
	}
	for _, tt := range tests {
		got, err := ParseProject(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProject(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProject(%q) = %v, want %v", tt.ref, got, tt.want)
		}
		if err == nil && got.String() != strings.TrimSpace(tt.ref) {
			t.Errorf("String() = %q", got.String())
		}
	}
}
