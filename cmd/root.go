package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seo-leads",
	Short: "Capture contact leads and SEO metrics from visited websites",
	Long:  "Extracts business contact details from browsed pages, merges them into a per-site lead record, forwards leads to sync targets and audits pages for SEO and page speed.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
