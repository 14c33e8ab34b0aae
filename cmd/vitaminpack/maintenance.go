package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		opened, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer opened.Close()

		logger.Info("migrations applied",
			zap.String("db", cfg.DBPath),
			zap.String("profile_store", cfg.ProfileStore),
		)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired refresh tokens and sign-in codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		opened, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer opened.Close()

		repos := opened.Repositories()
		now := time.Now().UTC()
		tokens, err := repos.RefreshTokens.DeleteExpired(cmd.Context(), now)
		if err != nil {
			return fmt.Errorf("prune refresh tokens: %w", err)
		}
		codes, err := repos.CallbackCodes.DeleteExpired(cmd.Context(), now)
		if err != nil {
			return fmt.Errorf("prune callback codes: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired refresh tokens and %d expired sign-in codes\n", tokens, codes)
		return nil
	},
}
