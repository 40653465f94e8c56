package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact and HTTP response caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var httpOnly bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached API responses and exported artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rc, err := c.newResponseCache()
			if err != nil {
				return fmt.Errorf("open response cache: %w", err)
			}
			if err := rc.Clear(); err != nil {
				return fmt.Errorf("clear response cache: %w", err)
			}
			printSuccess("Cleared HTTP responses")
			printDetail("Directory: %s", rc.Dir())
			if httpOnly {
				return nil
			}

			artifacts, err := c.newCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", c.Config.Cache.Backend, err)
			}
			defer artifacts.Close()
			cl, ok := artifacts.(cache.Clearer)
			if !ok {
				printInfo("The %s cache backend keeps nothing to clear", c.Config.Cache.Backend)
				return nil
			}
			if err := cl.Clear(ctx); err != nil {
				return fmt.Errorf("clear artifacts: %w", err)
			}
			printSuccess("Cleared %s artifact cache", c.Config.Cache.Backend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&httpOnly, "http", false, "only clear cached API responses")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
