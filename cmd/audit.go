package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/seo"
	"github.com/sells-group/seo-leads/pkg/pagerank"
)

var auditOutput string

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Run the on-page SEO checklist and look up domain rank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		hc := &http.Client{Timeout: time.Duration(cfg.Capture.FetchTimeoutSecs) * time.Second}

		rep, err := seo.Fetch(ctx, hc, args[0])
		if err != nil {
			return err
		}
		rank := lookupRank(ctx, pagerank.NewClient(cfg.PageRank.Key, pagerank.WithBaseURL(cfg.PageRank.BaseURL)), args[0])

		if auditOutput != "text" {
			return writeOutput(cmd.OutOrStdout(), auditOutput, struct {
				SEO      *seo.Report     `json:"seo" yaml:"seo"`
				PageRank *pagerank.Entry `json:"pageRank,omitempty" yaml:"pageRank,omitempty"`
			}{rep, rank})
		}
		writeAuditText(cmd.OutOrStdout(), rep, rank)
		return nil
	},
}

// lookupRank returns the PageRank entry for pageURL's host, or nil when the
// lookup fails.
func lookupRank(ctx context.Context, c pagerank.Client, pageURL string) *pagerank.Entry {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	domain := strings.TrimPrefix(u.Hostname(), "www.")
	resp, err := c.Lookup(ctx, domain)
	if err != nil {
		zap.L().Warn("pagerank lookup failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	if len(resp.Response) == 0 {
		return nil
	}
	return &resp.Response[0]
}

func writeAuditText(w io.Writer, rep *seo.Report, rank *pagerank.Entry) {
	fmt.Fprintf(w, "SEO score: %d/100\n", rep.Score)
	fmt.Fprintf(w, "Title (%d): %s\n", rep.TitleLength, rep.Title)
	fmt.Fprintf(w, "Meta description (%d): %s\n", rep.MetaDescLength, rep.MetaDesc)
	fmt.Fprintf(w, "Robots: %s (indexable: %t)\n", rep.MetaRobots, rep.Indexable)
	if rank != nil {
		fmt.Fprintf(w, "PageRank: %.2f (rank %s)\n", rank.PageRankDecimal, rank.Rank)
	}
	if len(rep.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	fmt.Fprintln(w, "Issues:")
	for _, issue := range rep.Issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func init() {
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(auditCmd)
}
