package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huangsam/pagescore/core"
	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/iocache"
)

// cacheSetup validates config and opens only the cache store.
func cacheSetup(args []string) error {
	if err := configSetup(args); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history for cache commands)
	if err := iocache.InitCaching(rootCtx, cfg.CacheBackend, cfg.CacheDBConnect, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, args []string) error {
	return cacheSetup(args)
}

// openAnalysisCache returns the analysis cache over the configured store.
func openAnalysisCache() (*iocache.AnalysisCache, error) {
	cache := core.NewCache(cfg, cacheManager, nil)
	if cache == nil {
		return nil, errors.New("analysis cache is disabled: set a cache backend other than none")
	}
	return cache, nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands open only the cache store instead of the full
// sharedSetup used by the score command.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
	Long: `Manage the cache of SEO analyses that avoids rescoring unchanged pages.

Entries are keyed by analysis kind, identifier and context hints, and expire
according to their content type, the request priority and the user preference tier.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None

Subcommands:
  status     - Show backend connection info and entry counts
  stats      - Show key counts per analysis kind
  clear      - Remove all cached data
  cleanup    - Remove expired entries
  invalidate - Remove the entries of a URL or a domain

Examples:
  # Check cache status
  pagescore cache status

  # Drop everything cached for a domain
  pagescore cache invalidate --domain example.com`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache connection details and entry counts",
	Long: `Show the backend type, connection status, entry count and storage size of the cache.

Examples:
  # Check the Redis cache
  PAGESCORE_CACHE_BACKEND=redis PAGESCORE_CACHE_DB_CONNECT="redis://localhost:6379/0" pagescore cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := cacheManager.GetCacheStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("no cache store is configured"))
		}
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheStatsCmd shows key counts per analysis kind.
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display key counts per analysis kind",
	Long: `Count the cached entries under the key prefix, grouped by analysis kind.

Backends that cannot enumerate keys report zero entries.`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache, err := openAnalysisCache()
		if err != nil {
			contract.LogFatal("Failed to get cache statistics", err)
		}
		iocache.PrintCacheStatistics(os.Stdout, cache.Statistics(rootCtx))
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analyses",
	Long: `Delete all cached analyses from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every key under the key prefix

Examples:
  # Clear SQLite cache (default)
  pagescore cache clear

  # Clear MySQL cache (set connection string via env variable)
  PAGESCORE_CACHE_BACKEND=mysql PAGESCORE_CACHE_DB_CONNECT="..." pagescore cache clear`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.CacheDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetCacheDBFilePath()
		}
		if err := iocache.ClearCache(rootCtx, cfg.CacheBackend, dbFilePath, cfg.CacheDBConnect, cfg.KeyPrefix); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheCleanupCmd removes expired entries.
var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired cache entries",
	Long: `Delete entries whose lifetime has passed.

SQL backends delete expired rows in bulk. Redis expires keys on its own, so
only keys without any expiry are removed there.`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache, err := openAnalysisCache()
		if err != nil {
			contract.LogFatal("Failed to clean up cache", err)
		}
		fmt.Printf("Removed %d expired entries.\n", cache.CleanupExpiredEntries(rootCtx))
	},
}

// cacheInvalidateCmd removes the entries of a URL or a domain.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Remove the cached analyses of a URL or a domain",
	Long: `Delete every cached analysis built for a URL, across all analysis kinds and
context hints, or every analysis whose key embeds a domain.

Examples:
  # Rescore a page on the next request
  pagescore cache invalidate --url https://example.com/shoes

  # Drop a whole domain
  pagescore cache invalidate --domain example.com`,
	PreRunE: cacheSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		url, _ := cmd.Flags().GetString("url")
		domain, _ := cmd.Flags().GetString("domain")
		if url == "" && domain == "" {
			contract.LogFatal("Failed to invalidate cache", errors.New("either --url or --domain is required"))
		}

		cache, err := openAnalysisCache()
		if err != nil {
			contract.LogFatal("Failed to invalidate cache", err)
		}
		deleted := 0
		if url != "" {
			deleted += cache.InvalidateBySubject(rootCtx, url)
		}
		if domain != "" {
			deleted += cache.InvalidateByDomain(rootCtx, domain)
		}
		fmt.Printf("Invalidated %d cache entries.\n", deleted)
	},
}
