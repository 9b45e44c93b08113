package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seo-leads/internal/capture"
	"github.com/sells-group/seo-leads/internal/model"
)

var (
	captureAuto     bool
	captureHTMLPath string
	captureWorkers  int
)

var captureCmd = &cobra.Command{
	Use:   "capture <url>...",
	Short: "Capture and merge leads for one or more pages",
	Long:  "Runs a forced capture for each URL, the same as a manual refresh. With --auto only landing pages are captured.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		if captureHTMLPath != "" && len(args) > 1 {
			return eris.New("--html applies to a single url")
		}

		var html string
		if captureHTMLPath != "" {
			b, err := os.ReadFile(captureHTMLPath)
			if err != nil {
				return eris.Wrap(err, "read html")
			}
			html = string(b)
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := newScheduler(env, false)
		results := make([]*model.Lead, len(args))
		failures := make([]error, len(args))

		// Each URL fails on its own; one bad URL never cancels the rest.
		var g errgroup.Group
		g.SetLimit(max(captureWorkers, 1))
		for i, u := range args {
			g.Go(func() error {
				lead, err := sched.Capture(ctx, capture.Tab{ID: i + 1, URL: u, HTML: html}, !captureAuto)
				if err != nil {
					zap.L().Warn("capture failed", zap.String("url", u), zap.Error(err))
					failures[i] = eris.Wrapf(err, "capture %s", u)
					return nil
				}
				if lead == nil {
					zap.L().Info("no lead captured", zap.String("url", u))
				}
				results[i] = lead
				return nil
			})
		}
		_ = g.Wait()
		sched.Wait()

		captured := []model.Lead{}
		for _, l := range results {
			if l != nil {
				captured = append(captured, *l)
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(captured); err != nil {
			return eris.Wrap(err, "encode captures")
		}

		var msgs []string
		for _, err := range failures {
			if err != nil {
				msgs = append(msgs, err.Error())
			}
		}
		if len(msgs) > 0 {
			return eris.Errorf("%d of %d captures failed: %s", len(msgs), len(args), strings.Join(msgs, "; "))
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().BoolVar(&captureAuto, "auto", false, "only capture landing pages, like automatic navigation captures")
	captureCmd.Flags().StringVar(&captureHTMLPath, "html", "", "read page HTML from a file instead of fetching it")
	captureCmd.Flags().IntVar(&captureWorkers, "workers", 4, "concurrent captures")
	rootCmd.AddCommand(captureCmd)
}
