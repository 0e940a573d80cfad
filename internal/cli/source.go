package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
	"github.com/bjoernmichaelsen/ghdepup/pkg/integrations/github"
	"github.com/bjoernmichaelsen/ghdepup/pkg/pipeline"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	tokenEnv    = "GITHUB_TOKEN"
	redisURLEnv = "GHDEPUP_REDIS_URL"

	cacheFile  = "file"
	cacheNone  = "none"
	cacheRedis = "redis"

	defaultCacheTTL = time.Hour
	redisKeyPrefix  = appName + ":"
)

// =============================================================================
// Source Flags
// =============================================================================

// sourceOpts holds the flags shared by every command that fetches tags.
type sourceOpts struct {
	tokenFile   string        // read the token from a file instead of GITHUB_TOKEN
	apiURL      string        // GitHub API root
	maxPages    int           // tag pages per project
	concurrency int           // fetches in flight
	cache       string        // cache backend: file, none, redis
	redisURL    string        // redis://host:port/db
	cacheTTL    time.Duration // lifetime of cached tag lists
	refresh     bool          // bypass cached tag lists
}

// defaultSourceOpts returns the source flags' defaults with the given cache
// backend. One-shot commands pass cacheNone so every run sees the current
// upstream tags.
func defaultSourceOpts(backend string) sourceOpts {
	return sourceOpts{
		apiURL:      github.DefaultBaseURL,
		maxPages:    github.DefaultMaxPages,
		concurrency: pipeline.DefaultConcurrency,
		cache:       backend,
		cacheTTL:    defaultCacheTTL,
	}
}

func (o *sourceOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.tokenFile, "token-file", "", "read the GitHub token from a file (default $"+tokenEnv+")")
	f.StringVar(&o.apiURL, "api-url", o.apiURL, "GitHub API url")
	f.IntVar(&o.maxPages, "max-pages", o.maxPages, "maximum tag pages per project (100 tags each)")
	f.IntVar(&o.concurrency, "concurrency", o.concurrency, "maximum concurrent tag requests")
	f.StringVar(&o.cache, "cache", o.cache, "tag cache backend: file, none or redis")
	f.StringVar(&o.redisURL, "redis-url", "", "redis url for --cache=redis (default $"+redisURLEnv+")")
	f.DurationVar(&o.cacheTTL, "cache-ttl", o.cacheTTL, "lifetime of cached tag lists")
	f.BoolVar(&o.refresh, "refresh", false, "bypass cached tag lists")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner builds a pipeline runner backed by the GitHub tag client.
// The returned close function releases the cache.
func (c *CLI) newRunner(ctx context.Context, o *sourceOpts) (*pipeline.Runner, func() error, error) {
	token, err := readCredential(o.tokenFile, c.getenv)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openCache(ctx, o.cache, o.redisURL)
	if err != nil {
		return nil, nil, err
	}

	client, err := github.NewTagClient(github.Config{
		Token:    token,
		BaseURL:  o.apiURL,
		Cache:    store,
		CacheTTL: o.cacheTTL,
		MaxPages: o.maxPages,
	})
	if err != nil {
		store.Close()
		return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "invalid --api-url")
	}

	runner := pipeline.NewRunner(client, loggerFromContext(ctx))
	runner.Concurrency = o.concurrency
	runner.Refresh = o.refresh
	return runner, store.Close, nil
}

// =============================================================================
// Credentials
// =============================================================================

// readCredential returns the GitHub token, read once from path or, if path
// is empty, from $GITHUB_TOKEN. Trailing line breaks are removed.
func readCredential(path string, getenv func(string) string) (string, error) {
	var token string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", apperr.Wrap(apperr.ErrCodeReadConfig, err, "error reading token file %s", path)
		}
		token = string(data)
	} else {
		token = getenv(tokenEnv)
	}

	token = strings.TrimRight(token, "\r\n")
	if token == "" {
		return "", apperr.New(apperr.ErrCodeMissingCredential,
			"no GitHub token: set $%s or pass --token-file", tokenEnv)
	}
	return token, nil
}
