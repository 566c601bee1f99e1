package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chargebook/backend/libs/logging"
	"chargebook/backend/services/booking-client/internal/app"
	"chargebook/backend/services/booking-client/internal/config"
)

type options struct {
	configPath string
}

// NewRootCommand builds the booking-cli command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "booking-cli",
		Short:         "Find charging stations and reserve charging slots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (defaults to $CONFIG_FILE)")

	root.AddCommand(
		newStationsCommand(opts),
		newSlotsCommand(opts),
		newReserveCommand(opts),
		newWatchCommand(opts),
		newVehiclesCommand(opts),
	)
	return root
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// withApp loads configuration, builds the application and runs fn with it.
func withApp(cmd *cobra.Command, opts *options, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger("booking-cli")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init booking client", zap.Error(err))
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
