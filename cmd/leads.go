package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/forward"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
)

var leadsOutput string

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := env.Leads.List(ctx)
		if err != nil {
			return err
		}
		if leadsOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), leadsOutput, all)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WEBSITE\tNAME\tEMAIL\tPHONE\tUPDATED")
		for _, l := range all {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Website, l.Name, l.Email, l.Phone, l.DateUpdated)
		}
		return tw.Flush()
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Show the lead stored for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, err := model.Origin(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Leads.Get(ctx, origin)
		if err != nil {
			return err
		}
		if lead == nil {
			return eris.Errorf("no leads captured yet for %s", origin)
		}
		format := leadsOutput
		if format == "table" {
			format = "yaml"
		}
		return writeOutput(cmd.OutOrStdout(), format, lead)
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export all leads to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := env.Leads.List(ctx)
		if err != nil {
			return err
		}
		if err := report.ExportLeads(args[0], all); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d leads to %s\n", len(all), args[0])
		return nil
	},
}

var leadsPullNotionCmd = &cobra.Command{
	Use:   "pull-notion",
	Short: "Merge rows of the Notion lead database into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
			return eris.New("pull-notion: notion.token and notion.lead_db are required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := forward.NewNotion(newNotionClient(cfg.Notion.Token), cfg.Notion.LeadDB).Pull(ctx)
		if err != nil {
			return err
		}
		merged := 0
		for _, row := range rows {
			origin, err := model.Origin(row.Website)
			if err != nil {
				zap.L().Warn("pull-notion: skipping row", zap.String("website", row.Website), zap.Error(err))
				continue
			}
			if _, err := env.Leads.Upsert(ctx, origin, row.Fragment); err != nil {
				return eris.Wrapf(err, "pull-notion: merge %s", origin)
			}
			merged++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "merged %d of %d notion rows\n", merged, len(rows))
		return nil
	},
}

func init() {
	leadsCmd.PersistentFlags().StringVarP(&leadsOutput, "output", "o", "table", "output format: table, json or yaml")
	leadsCmd.AddCommand(leadsListCmd, leadsShowCmd, leadsExportCmd, leadsPullNotionCmd)
	rootCmd.AddCommand(leadsCmd)
}
