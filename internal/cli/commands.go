package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"timsbridge/internal/fiscal"
	"timsbridge/internal/logger"
	"timsbridge/internal/service"

	"github.com/spf13/cobra"
)

func newProbeCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the fiscal device accepts TCP connections",
		Long: `Open and close a TCP connection to the device.

Without --ip the address is read from the stored device setup. The stored
setup status is not changed; use "setup test-connection" for that.`,
		Example: `  timsctl probe --ip 192.168.1.50 --port 8086`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ip, _ := cmd.Flags().GetString("ip")
			port, _ := cmd.Flags().GetInt("port")

			addr := net.JoinHostPort(ip, strconv.Itoa(port))
			if ip == "" {
				err := withServices(cmd, opts, func(s *Services) error {
					setup, err := s.Setups.GetSetup(cmd.Context())
					if err != nil {
						return err
					}
					addr = setup.Address()
					return nil
				})
				if err != nil {
					return err
				}
			}

			start := time.Now()
			if err := opts.Prober.Probe(cmd.Context(), addr); err != nil {
				return fmt.Errorf("device at %s unreachable: %w", addr, err)
			}
			fmt.Fprintf(opts.Out, "Connected to device at %s in %s\n", addr, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().String("ip", "", "Device IP address")
	cmd.Flags().Int("port", 8086, "Device port")
	return cmd
}

func newSendCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "send INVOICE...",
		Short: "Send invoices to the fiscal device",
		Long: `Fiscalize the named invoices, ignoring the on-submit flags.

Each invoice is sent in turn. The command fails if any invoice was not
acknowledged.`,
		Example: `  timsctl send ACC-SINV-2024-00001 ACC-SINV-2024-00002`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("send")
			actor := actorFlag(cmd)

			return withServices(cmd, opts, func(s *Services) error {
				failed := 0
				for _, name := range args {
					result, err := s.Invoices.FiscalizeInvoice(cmd.Context(), name, actor)
					if err != nil {
						failed++
						log.Error().Err(err).Str("invoice", name).Msg("Fiscalization failed")
						fmt.Fprintf(opts.Out, "%s\tFAILED\t%s\n", name, failureMessage(err))
						continue
					}
					fmt.Fprintf(opts.Out, "%s\t%s\t%s\t%s\n", name, result.Outcome, result.ResponseCode, result.CUIN)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d invoices were not fiscalized", failed, len(args))
				}
				return nil
			})
		},
	}
}

func failureMessage(err error) string {
	var fe *fiscal.Error
	if errors.As(err, &fe) {
		return fiscal.UserMessage(err)
	}
	return err.Error()
}

func newSetupCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Inspect the device setup",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the device setup as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, opts, func(s *Services) error {
				setup, err := s.Setups.GetSetup(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(opts.Out, setup)
			})
		},
	}

	testConn := &cobra.Command{
		Use:     "test-connection",
		Short:   "Probe the device and record the result on the setup",
		Example: `  timsctl setup test-connection --ip 192.168.1.50 --port 8086`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ip, _ := cmd.Flags().GetString("ip")
			port, _ := cmd.Flags().GetInt("port")
			return withServices(cmd, opts, func(s *Services) error {
				result, err := s.Setups.TestConnection(cmd.Context(), service.TestConnectionRequest{IP: ip, Port: port}, actorFlag(cmd))
				if err != nil {
					return err
				}
				if err := printJSON(opts.Out, result); err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("device at %s unreachable", net.JoinHostPort(ip, strconv.Itoa(port)))
				}
				return nil
			})
		},
	}
	testConn.Flags().String("ip", "", "Device IP address")
	testConn.Flags().Int("port", 8086, "Device port")
	_ = testConn.MarkFlagRequired("ip")

	cmd.AddCommand(show, testConn)
	return cmd
}

func newResponsesCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses",
		Short: "Work with stored device responses",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Export device responses to an xlsx workbook",
		Example: `  timsctl responses export --output responses.xlsx
  timsctl responses export --invoice ACC-SINV-2024-00001 --output -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			invoice, _ := cmd.Flags().GetString("invoice")
			code, _ := cmd.Flags().GetString("code")
			output, _ := cmd.Flags().GetString("output")

			w := opts.Out
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			return withServices(cmd, opts, func(s *Services) error {
				n, err := s.Responses.ExportResponses(cmd.Context(), service.DeviceResponseFilter{
					InvoiceNumber: invoice,
					ResponseCode:  code,
				}, w)
				if err != nil {
					return err
				}
				if output != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d responses to %s\n", n, output)
				}
				return nil
			})
		},
	}
	export.Flags().String("invoice", "", "Only responses for this invoice")
	export.Flags().String("code", "", "Only responses with this response code")
	export.Flags().StringP("output", "o", "tims-responses.xlsx", `Output file, "-" for stdout`)

	cmd.AddCommand(export)
	return cmd
}
