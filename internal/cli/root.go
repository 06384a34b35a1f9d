// Package cli implements timsctl, the operator command line for the TIMS bridge.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"timsbridge/internal/app"
	"timsbridge/internal/config"
	"timsbridge/internal/device"
	"timsbridge/internal/logger"
	"timsbridge/internal/service"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// Services are the parts of the bridge the commands drive.
type Services struct {
	Invoices  service.InvoiceService
	Setups    service.DeviceSetupService
	Responses service.FiscalResponseService
}

// Loader opens the services. The returned func releases them.
type Loader func(ctx context.Context) (*Services, func() error, error)

// Options configure the root command.
type Options struct {
	Load   Loader
	Prober device.Prober
	Out    io.Writer
}

// DefaultLoader connects to the database configured in configs/.env and the
// TIMS_ environment.
func DefaultLoader(_ context.Context) (*Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, app.Options{Notifier: logNotifier{}})
	if err != nil {
		return nil, nil, err
	}
	return &Services{Invoices: a.Invoices, Setups: a.Setups, Responses: a.Responses}, a.Close, nil
}

// NewRootCmd builds the timsctl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Prober == nil {
		opts.Prober = device.TCPProber{}
	}

	root := &cobra.Command{
		Use:   "timsctl",
		Short: "Operate the KRA TIMS/ETR fiscal device bridge",
		Long: `timsctl talks to the TIMS bridge database and the fiscal control unit.

It can check that the device is reachable, send invoices for fiscalization
outside the submit flow, show the device setup and export the device
response audit trail.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("actor", "timsctl", "Name recorded in the audit log")

	root.AddCommand(
		newProbeCmd(opts),
		newSendCmd(opts),
		newSetupCmd(opts),
		newResponsesCmd(opts),
	)
	return root
}

// Execute runs timsctl and exits non-zero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	root := NewRootCmd(Options{Load: DefaultLoader})
	if err := root.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func withServices(cmd *cobra.Command, opts Options, fn func(*Services) error) error {
	if opts.Load == nil {
		return fmt.Errorf("no service loader configured")
	}
	svcs, release, err := opts.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open services: %w", err)
	}
	if release != nil {
		defer release()
	}
	return fn(svcs)
}

func actorFlag(cmd *cobra.Command) string {
	actor, _ := cmd.Flags().GetString("actor")
	return actor
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logNotifier surfaces operator notices on the console log.
type logNotifier struct{}

func (logNotifier) Notify(_ context.Context, n service.Notice) {
	log := logger.WithComponent("notice")
	log.Warn().Str("invoice", n.Invoice).Str("level", n.Level).Msg(n.Message)
}
