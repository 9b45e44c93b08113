package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/seo-leads/internal/speed"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
)

var speedOutput string

var speedCmd = &cobra.Command{
	Use:   "speed <url>",
	Short: "Run PageSpeed Insights on desktop and mobile",
	Long:  "Runs a desktop then a mobile PageSpeed audit and stores the result under the site's origin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := env.Speed.Run(ctx, args[0])
		if err != nil {
			return err
		}
		if speedOutput != "text" {
			return writeOutput(cmd.OutOrStdout(), speedOutput, a)
		}
		writeSpeedText(cmd.OutOrStdout(), a)
		return nil
	},
}

func writeSpeedText(w io.Writer, a *speed.Audit) {
	line := func(label string, r *pagespeed.Result) {
		if r == nil {
			fmt.Fprintf(w, "%s: no data\n", label)
			return
		}
		score := pagespeed.NotAvailable
		if r.PerformanceScore != nil {
			score = fmt.Sprintf("%d", *r.PerformanceScore)
		}
		fmt.Fprintf(w, "%s: score %s, FCP %s, LCP %s, CLS %s, TBT %s\n",
			label, score, r.FCP, r.LCP, r.CLS, r.TBT)
	}
	line("Desktop", a.Desktop)
	line("Mobile", a.Mobile)
	if a.MobileError != "" {
		fmt.Fprintf(w, "Mobile error: %s\n", a.MobileError)
	}
}

func init() {
	speedCmd.Flags().StringVarP(&speedOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(speedCmd)
}
