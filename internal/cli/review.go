package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"artconnect/internal/app"
	"artconnect/internal/interaction"
	"artconnect/internal/review"
	"artconnect/internal/storage"
)

func newScoreCmd() *cobra.Command {
	var (
		platform  string
		minScore  float64
		limit     int
		highValue bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "List interactions by opportunity score",
		Example: `  artconnect score --limit 10
  artconnect score --platform twitter --high-value --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				f := review.Filter{MinScore: minScore, Limit: limit}
				if platform != "" {
					p, err := interaction.ParsePlatform(platform)
					if err != nil {
						return err
					}
					f.Platform = p
				}
				if highValue && f.MinScore < a.HighValue() {
					f.MinScore = a.HighValue()
				}
				ops := a.Review.Opportunities(f)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), ops)
				}
				return writeTable(cmd.OutOrStdout(), ops)
			})
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Instagram or Twitter")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum opportunity score")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows, 0 for all")
	cmd.Flags().BoolVar(&highValue, "high-value", false, "only high-value interactions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <interaction_id>",
		Short: "Print the suggested reply for an interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				op, err := a.Review.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, score %.1f, %s reply)\n> %s\n\n%s\n",
					op.ID, op.Platform, op.OpportunityScore, op.ReplyCategory, op.Text, op.SuggestedReply)
				return nil
			})
		},
	}
}

func newDecideCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "decide <interaction_id> <approve|edit|reject>",
		Short: "Log a reviewer decision",
		Long: `Append one decision to the decision log.

approve sends the suggested reply unless --text is given, edit requires
--text, reject sends nothing.`,
		Example: `  artconnect decide INS-0001 approve
  artconnect decide TWI-0004 edit --text "Thank you! DM me for prints."`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := storage.ParseAction(args[1])
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				e, err := a.Review.Decide(args[0], action, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s for %s (decision %s)\n", e.Action, e.InteractionID, e.DecisionID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "final reply text")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show approval rate, action breakdown and the engagement funnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				report, err := a.Review.Report()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), report.GenerateReportSummary())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeTable(w io.Writer, ops []review.Opportunity) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLATFORM\tSCORE\tK\tS\tU\tR\tAUTHOR\tTEXT")
	for _, op := range ops {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			op.ID, op.Platform, op.OpportunityScore,
			op.KeywordFactor, op.SentimentFactor, op.InfluenceFactor, op.RecencyFactor,
			op.Author, truncate(op.Text, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
