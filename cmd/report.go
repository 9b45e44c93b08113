package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
	"github.com/sells-group/seo-leads/internal/seo"
)

var (
	reportOut      string
	reportRunSpeed bool
)

var reportCmd = &cobra.Command{
	Use:   "report <url>",
	Short: "Write a markdown report with SEO, page speed and lead data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := args[0]
		origin, err := model.Origin(pageURL)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		in := report.Input{GeneratedAt: time.Now()}

		hc := &http.Client{Timeout: time.Duration(cfg.Capture.FetchTimeoutSecs) * time.Second}
		if in.SEO, err = seo.Fetch(ctx, hc, pageURL); err != nil {
			zap.L().Warn("seo audit unavailable", zap.String("url", pageURL), zap.Error(err))
		}
		in.PageRank = lookupRank(ctx, env.PageRank, pageURL)

		if reportRunSpeed {
			if in.Audit, err = env.Speed.Run(ctx, pageURL); err != nil {
				zap.L().Warn("page speed audit failed", zap.String("url", pageURL), zap.Error(err))
			}
		} else if in.Audit, err = env.Speed.Get(ctx, pageURL); err != nil {
			return err
		}

		if in.Lead, err = env.Leads.Get(ctx, origin); err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return eris.Wrap(err, "create report file")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		return report.WriteMarkdown(w, in)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportRunSpeed, "speed", false, "run a fresh page speed audit instead of using the stored one")
	rootCmd.AddCommand(reportCmd)
}
