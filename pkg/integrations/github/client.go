package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bjoernmichaelsen/ghdepup/pkg/buildinfo"
	"github.com/bjoernmichaelsen/ghdepup/pkg/cache"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
	"github.com/bjoernmichaelsen/ghdepup/pkg/integrations"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultMaxPages bounds the number of tag pages fetched per project.
	DefaultMaxPages = 10

	apiVersion = "2022-11-28"
	perPage    = 100
)

// Config configures a TagClient. Zero values select the defaults.
type Config struct {
	Token      string        // Bearer token (optional, strongly recommended)
	BaseURL    string        // API root, DefaultBaseURL if empty
	Cache      cache.Cache   // Tag list cache, nil disables caching
	CacheTTL   time.Duration // Lifetime of cached tag lists
	MaxPages   int           // DefaultMaxPages if <= 0
	UserAgent  string        // "ghdepup/<version>" if empty
	HTTPClient *http.Client  // integrations.NewHTTPClient() if nil
}

// TagClient lists repository tags through the GitHub REST API.
type TagClient struct {
	*integrations.Client
	baseURL  string
	maxPages int
}

// NewTagClient creates a TagClient from cfg.
func NewTagClient(cfg Config) (*TagClient, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := apperr.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "ghdepup/" + buildinfo.Version
	}

	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": apiVersion,
		"User-Agent":           ua,
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}

	client := integrations.NewClient(cfg.Cache, "tags:", cfg.CacheTTL, headers)
	if cfg.HTTPClient != nil {
		client.WithHTTPClient(cfg.HTTPClient)
	}
	return &TagClient{Client: client, baseURL: baseURL, maxPages: maxPages}, nil
}

// FetchTags returns the tag names of project ("owner/repo") in API order.
// If refresh is true, cached data is bypassed.
func (c *TagClient) FetchTags(ctx context.Context, project string, refresh bool) ([]string, error) {
	p, err := ParseProject(project)
	if err != nil {
		return nil, err
	}

	key := cache.Key("github", c.baseURL, p.String(), c.maxPages)
	var tags []string
	err = c.Cached(ctx, key, refresh, &tags, func() error {
		var ferr error
		tags, ferr = c.fetchAll(ctx, p)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("github tags %s: %w", p, err)
	}
	return tags, nil
}

func (c *TagClient) fetchAll(ctx context.Context, p Project) ([]string, error) {
	tags := []string{}
	for page := 1; page <= c.maxPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d&page=%d", c.baseURL, p.Owner, p.Repo, perPage, page)
		body, _, err := c.GetBytes(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		names, err := parseTags(body)
		if err != nil {
			return nil, err
		}
		tags = append(tags, names...)
		if len(names) < perPage {
			break
		}
	}
	return tags, nil
}

// parseTags extracts the "name" of every entry of a tags payload.
func parseTags(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not json", integrations.ErrMalformed)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of tags", integrations.ErrMalformed)
	}

	var names []string
	for i, entry := range doc.Array() {
		if !entry.IsObject() {
			return nil, fmt.Errorf("%w: tag %d is not an object", integrations.ErrMalformed, i)
		}
		name := entry.Get("name")
		if name.Type != gjson.String {
			return nil, fmt.Errorf("%w: tag %d has no name", integrations.ErrMalformed, i)
		}
		names = append(names, name.String())
	}
	return names, nil
}
