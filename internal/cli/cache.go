package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/applycrypto/engine/internal/cache"
	"github.com/applycrypto/engine/internal/config"
)

// cacheCmd represents the cache command group.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or evict the content-hash cache",
	Long: `Manage the content-hash-keyed persistent cache of parser and
analyzer outputs.

Available commands:
  info   - Show cache location and occupancy
  clean  - Manually trigger cache eviction`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info [project-dir]",
	Short: "Show cache location and occupancy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheInfo,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean [project-dir]",
	Short: "Evict stale or over-budget cache entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClean,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func resolveProjectArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return os.Getwd()
}

func openCacheStore(root string) (*cache.Store, *config.Config, error) {
	cfg, err := config.LoadFromDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := cache.Open(root+"/.applycrypto/cache", cfg.Cache.InMemoryEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return store, cfg, nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectArg(args)
	if err != nil {
		return err
	}
	store, _, err := openCacheStore(root)
	if err != nil {
		return err
	}
	defer store.Close()

	stat, err := store.Stat()
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	fmt.Printf("Cache Location: %s/.applycrypto/cache\n", root)
	fmt.Printf("Entries: %d\n", stat.EntryCount)
	fmt.Printf("Total Size: %.2f MB\n", float64(stat.TotalBytes)/(1024*1024))
	if !stat.OldestEntry.IsZero() {
		fmt.Printf("Oldest Entry: %s\n", stat.OldestEntry.Format(time.RFC3339))
	}
	if !stat.NewestEntry.IsZero() {
		fmt.Printf("Newest Entry: %s\n", stat.NewestEntry.Format(time.RFC3339))
	}
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectArg(args)
	if err != nil {
		return err
	}
	store, cfg, err := openCacheStore(root)
	if err != nil {
		return err
	}
	defer store.Close()

	maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
	maxSizeBytes := int64(cfg.Cache.MaxSizeMB * 1024 * 1024)

	fmt.Println("Running cache eviction...")
	stats, err := store.Evict(maxAge, maxSizeBytes)
	if err != nil {
		return fmt.Errorf("eviction failed: %w", err)
	}

	if stats.EntriesRemoved == 0 {
		fmt.Println("No entries evicted (cache is within limits)")
		return nil
	}
	fmt.Printf("Evicted %d entry(ies), freed %.2f MB\n", stats.EntriesRemoved, float64(stats.BytesFreed)/(1024*1024))
	return nil
}
