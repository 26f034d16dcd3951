package cli

import (
	"context"
	"fmt"
	"time"

	"space-booking/cmd/bootstrap"
	"space-booking/cmd/bootstrap/components"
	"space-booking/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func sweepCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Cancel expired pending reservations and prune idempotency keys once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var expiry commands.ExpiryCommands
			app := fx.New(
				bootstrap.ConfigModule,
				bootstrap.LoggerModule,
				components.PersistenceModule,
				components.CacheModule,
				components.UseCaseModule,
				fx.Populate(&expiry),
				fx.NopLogger,
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			res, err := expiry.Sweep(ctx)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d pending reservation(s), deleted %d idempotency key(s)\n",
				len(res.Expired), res.IdempotencyKeysDeleted)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	return cmd
}
