package cli

import (
	"fmt"
	"learnhub_backend/internal/app"
	"learnhub_backend/pkg/logger"

	"github.com/spf13/cobra"
)

func newRanksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "名次维护",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "立即重算全站名次",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			result, err := application.RankService().Recompute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d users, %d changed in %s\n", result.Users, result.Changed, result.Duration)
			return nil
		},
	})
	return cmd
}
