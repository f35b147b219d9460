package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/inmueble/internal/cache"
	"github.com/ppiankov/inmueble/internal/model"
)

var cacheBackend string

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the fallback answer cache",
	Long: `The fallback cache memoizes inference answers by model, listing text
and requested fields. Entries never expire; clear the cache to force fresh
answers.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fallback cache statistics",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cacheBackend != "" {
			cfg.Cache.Backend = cacheBackend
		}

		c, err := openCache(cfg.Cache)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := cache.Close(c); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		fmt.Printf("Backend:   %s\n", cfg.Cache.Backend)
		fmt.Printf("Location:  %s\n", cacheLocation(cfg.Cache))
		if n := cache.Len(c); n >= 0 {
			fmt.Printf("Entries:   %s\n", humanize.Comma(int64(n)))
		} else {
			fmt.Printf("Entries:   unknown\n")
		}
		if info, err := os.Stat(cfg.Cache.Path); err == nil && strings.EqualFold(cfg.Cache.Backend, "sqlite") {
			fmt.Printf("Size:      %s\n", humanize.Bytes(uint64(info.Size())))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every fallback cache entry",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cacheBackend != "" {
			cfg.Cache.Backend = cacheBackend
		}

		c, err := openCache(cfg.Cache)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := cache.Close(c); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		n := cache.Len(c)
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		if n >= 0 {
			fmt.Printf("✓ Removed %s cache entries from %s\n", humanize.Comma(int64(n)), cacheLocation(cfg.Cache))
		} else {
			fmt.Printf("✓ Cleared %s\n", cacheLocation(cfg.Cache))
		}
		return nil
	},
}

func cacheLocation(cfg model.CacheConfig) string {
	switch strings.ToLower(cfg.Backend) {
	case "sqlite":
		return cfg.Path
	case "memory":
		return "(in-process)"
	default:
		return cfg.Dir
	}
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().StringVar(&cacheBackend, "cache-backend", "", "fallback cache backend (disk, sqlite, memory)")
}
