package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazemfarra/argus/internal/records"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "File intelligence records into the store",
}

var reportThreatCmd = &cobra.Command{
	Use:   "threat",
	Short: "File a threat report",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		threatType, _ := cmd.Flags().GetString("type")
		severity, _ := cmd.Flags().GetString("severity")
		description, _ := cmd.Flags().GetString("description")
		recommendations, _ := cmd.Flags().GetStringSlice("recommend")
		owner, _ := cmd.Flags().GetString("owner")
		source, _ := cmd.Flags().GetString("source")

		if title == "" || description == "" {
			return fmt.Errorf("--title and --description are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng, database, err := openEngine(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer database.Close()

		rec, err := eng.IngestThreatReport(ctx, owner, records.ThreatReport{
			Title:           title,
			ThreatType:      threatType,
			Severity:        severity,
			Description:     description,
			Recommendations: recommendations,
		}, source)
		if err != nil {
			return err
		}

		fmt.Printf("Threat report stored: %s\n", rec.ID)
		return nil
	},
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "File a summary report",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		summaryType, _ := cmd.Flags().GetString("type")
		executive, _ := cmd.Flags().GetString("executive")
		findings, _ := cmd.Flags().GetStringSlice("finding")
		recommendations, _ := cmd.Flags().GetStringSlice("recommend")
		owner, _ := cmd.Flags().GetString("owner")
		source, _ := cmd.Flags().GetString("source")

		if title == "" || executive == "" {
			return fmt.Errorf("--title and --executive are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng, database, err := openEngine(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer database.Close()

		rec, err := eng.IngestSummaryReport(ctx, owner, records.SummaryReport{
			Title:            title,
			SummaryType:      summaryType,
			ExecutiveSummary: executive,
			KeyFindings:      findings,
			Recommendations:  recommendations,
		}, source)
		if err != nil {
			return err
		}

		fmt.Printf("Summary report stored: %s\n", rec.ID)
		return nil
	},
}

func init() {
	reportThreatCmd.Flags().String("title", "", "short title of the threat")
	reportThreatCmd.Flags().String("type", "", "category, e.g. phishing, malware, intrusion")
	reportThreatCmd.Flags().String("severity", "", "low, medium, high or critical")
	reportThreatCmd.Flags().String("description", "", "detailed description")
	reportThreatCmd.Flags().StringSlice("recommend", nil, "recommended action (repeatable)")
	reportThreatCmd.Flags().String("owner", "", "owner of the report; empty shares it globally")
	reportThreatCmd.Flags().String("source", "cli", "where this report came from")

	reportSummaryCmd.Flags().String("title", "", "title of the summary")
	reportSummaryCmd.Flags().String("type", "", "summary type, e.g. weekly, incident")
	reportSummaryCmd.Flags().String("executive", "", "executive summary text")
	reportSummaryCmd.Flags().StringSlice("finding", nil, "key finding (repeatable)")
	reportSummaryCmd.Flags().StringSlice("recommend", nil, "recommended action (repeatable)")
	reportSummaryCmd.Flags().String("owner", "", "owner of the report; empty shares it globally")
	reportSummaryCmd.Flags().String("source", "cli", "where this report came from")

	reportCmd.AddCommand(reportThreatCmd)
	reportCmd.AddCommand(reportSummaryCmd)
	rootCmd.AddCommand(reportCmd)
}
