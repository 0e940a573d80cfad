package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjoernmichaelsen/ghdepup/pkg/cache"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

// openCache opens the tag cache selected by backend.
func (c *CLI) openCache(ctx context.Context, backend, redisURL string) (cache.Cache, error) {
	switch backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheFile, "":
		dir, err := cache.DefaultDir()
		if err != nil {
			loggerFromContext(ctx).Warnf("Tag cache disabled: %v", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case cacheRedis:
		url := c.redisURL(redisURL)
		if url == "" {
			return nil, apperr.New(apperr.ErrCodeInvalidConfig,
				"--cache=redis needs --redis-url or $%s", redisURLEnv)
		}
		return cache.NewRedisCache(ctx, url, redisKeyPrefix)
	}
	return nil, apperr.New(apperr.ErrCodeInvalidConfig,
		"unknown cache backend %q (want %s, %s or %s)", backend, cacheFile, cacheNone, cacheRedis)
}

func (c *CLI) redisURL(flag string) string {
	if flag != "" {
		return flag
	}
	return c.getenv(redisURLEnv)
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var backend, redisURL string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tag cache",
	}
	cmd.PersistentFlags().StringVar(&backend, "cache", cacheFile, "cache backend: file or redis")
	cmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "redis url (default $"+redisURLEnv+")")

	cmd.AddCommand(c.cacheClearCommand(&backend, &redisURL))
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(backend, redisURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached tag lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openCache(ctx, *backend, *redisURL)
			if err != nil {
				return err
			}
			defer store.Close()

			switch s := store.(type) {
			case *cache.FileCache:
				if err := s.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				c.printSuccess("Cleared tag cache")
				c.printDetail("Directory: %s", s.Dir())
			case *cache.RedisCache:
				if err := s.Clear(ctx); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				c.printSuccess("Cleared tag cache")
				c.printDetail("Prefix: %s", redisKeyPrefix)
			default:
				c.printInfo("Cache is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.stdout, dir)
			return nil
		},
	}
}
