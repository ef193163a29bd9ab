package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"artconnect/internal/sample"
)

func newGenerateCmd() *cobra.Command {
	def := sample.DefaultConfig(time.Time{})
	var (
		seed      int64
		total     int
		highValue int
		daysBack  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write fake Instagram and Twitter sample files",
		Long: `Generate a reproducible set of fake interactions.

Instagram interactions go to INSTAGRAM_PATH as CSV, Twitter interactions to
TWITTER_PATH as JSON. High-value comments carry commercial keywords and come
from larger accounts.`,
		Example: `  artconnect generate
  artconnect generate --seed 7 --total 500 --high-value 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if total <= 0 || highValue < 0 || highValue > total {
				return fmt.Errorf("need 0 <= high-value <= total and total > 0")
			}
			sc := sample.DefaultConfig(time.Now())
			sc.Seed = seed
			sc.Total = total
			sc.HighValue = highValue
			sc.DaysBack = daysBack

			ni, nt, err := sample.WriteFiles(sc, cfg.InstagramPath, cfg.TwitterPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d Instagram rows to %s\n", ni, cfg.InstagramPath)
			fmt.Fprintf(out, "Wrote %d Twitter rows to %s\n", nt, cfg.TwitterPath)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().IntVar(&total, "total", def.Total, "number of interactions")
	cmd.Flags().IntVar(&highValue, "high-value", def.HighValue, "number of high-value interactions")
	cmd.Flags().IntVar(&daysBack, "days-back", def.DaysBack, "spread timestamps over this many days")

	return cmd
}
