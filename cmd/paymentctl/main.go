// Command paymentctl runs operator tasks against the configured gateways:
// backfills from the processor and the destructive reset of stored payment data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uniedit/paysync/internal/app"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/maintenance"
	"github.com/uniedit/paysync/internal/infra/config"
	"go.uber.org/zap"
)

// resetter deletes stored payment data.
type resetter interface {
	Reset(ctx context.Context) (*maintenance.ResetResult, error)
}

// runtime is what a command needs once the flags are valid.
type runtime struct {
	gateways *gateway.Registry
	maint    resetter
	logger   *zap.Logger
}

// loader builds the runtime and returns its cleanup.
type loader func() (*runtime, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(loadRuntime).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func loadRuntime() (*runtime, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	deps, cleanup, err := app.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return &runtime{gateways: deps.Gateways, maint: deps.Maintenance, logger: deps.Logger}, cleanup, nil
}

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Operator tasks for payment gateways",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(syncPlansCmd(load))
	root.AddCommand(syncPaymentMethodsCmd(load))
	root.AddCommand(syncInvoicesCmd(load))
	root.AddCommand(resetCmd(load))

	return root
}

func syncPlansCmd(load loader) *cobra.Command {
	var gatewayID int64
	cmd := &cobra.Command{
		Use:   "sync-plans",
		Short: "Backfill the plan catalogue of a gateway from the processor",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requirePositive("gateway", gatewayID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, load, func(ctx context.Context, rt *runtime) (any, error) {
				g, err := rt.gateways.Subscription(gatewayID)
				if err != nil {
					return nil, err
				}
				n, err := g.SyncPlans(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"gateway_id": gatewayID, "synced": n}, nil
			})
		},
	}

	gatewayFlag(cmd, &gatewayID)
	return cmd
}

func syncPaymentMethodsCmd(load loader) *cobra.Command {
	var gatewayID int64
	cmd := &cobra.Command{
		Use:   "sync-payment-methods",
		Short: "Refresh stored payment methods of a gateway",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requirePositive("gateway", gatewayID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, load, func(ctx context.Context, rt *runtime) (any, error) {
				g, err := rt.gateways.PaymentMethods(gatewayID)
				if err != nil {
					return nil, err
				}
				n, err := g.SyncPaymentMethods(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"gateway_id": gatewayID, "synced": n}, nil
			})
		},
	}

	gatewayFlag(cmd, &gatewayID)
	return cmd
}

func syncInvoicesCmd(load loader) *cobra.Command {
	var gatewayID, subscriptionID int64
	cmd := &cobra.Command{
		Use:   "sync-invoices",
		Short: "Backfill invoices of one subscription",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("gateway", gatewayID); err != nil {
				return err
			}
			return requirePositive("subscription", subscriptionID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, load, func(ctx context.Context, rt *runtime) (any, error) {
				g, err := rt.gateways.Subscription(gatewayID)
				if err != nil {
					return nil, err
				}
				n, err := g.SyncInvoices(ctx, subscriptionID)
				if err != nil {
					return nil, err
				}
				return map[string]any{"gateway_id": gatewayID, "subscription_id": subscriptionID, "synced": n}, nil
			})
		},
	}

	gatewayFlag(cmd, &gatewayID)
	cmd.Flags().Int64VarP(&subscriptionID, "subscription", "s", 0, "local subscription id")
	_ = cmd.MarkFlagRequired("subscription")
	return cmd
}

func resetCmd(load loader) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete stored customers, invoices and payment intents",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("reset deletes all stored payment data; pass --yes to confirm")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, load, func(ctx context.Context, rt *runtime) (any, error) {
				return rt.maint.Reset(ctx)
			})
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm deletion of customers, invoices and payment intents")
	return cmd
}

func gatewayFlag(cmd *cobra.Command, id *int64) {
	cmd.Flags().Int64VarP(id, "gateway", "g", 0, "gateway id")
	_ = cmd.MarkFlagRequired("gateway")
}

func requirePositive(flag string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("--%s must be a positive id, got %d", flag, v)
	}
	return nil
}

// run loads the runtime, executes fn and prints its result as JSON.
func run(cmd *cobra.Command, load loader, fn func(ctx context.Context, rt *runtime) (any, error)) error {
	rt, cleanup, err := load()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := fn(cmd.Context(), rt)
	if err != nil {
		rt.logger.Error("Command failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
