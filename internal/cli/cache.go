package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

// openCache loads the effective config and opens the response cache.
// force opens the store even when caching is disabled; clear still
// needs the directory.
func openCache(force bool) (*cache.Cache, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(force || cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached model responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(true)
		if err != nil {
			return err
		}
		removed, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing response cache: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Removed %d cached response(s).\n", removed)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(false)
		if err != nil {
			return err
		}
		if !c.Enabled() {
			fmt.Fprintln(os.Stdout, "Response cache is disabled.")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("collecting cache stats: %w", err)
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheShowCmd)
}
