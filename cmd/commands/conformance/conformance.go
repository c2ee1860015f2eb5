package conformance

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nathanbeddoewebdev/dnsctl/internal/dns/adapters"
	"nathanbeddoewebdev/dnsctl/internal/dns/conformance"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

// NewCommand returns the "conformance" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conformance",
		Short: "Inspect the provider conformance suite",
		Long: `Inspect the conformance suite every DNS provider runs against.

The suite itself runs with 'go test ./internal/dns/adapters/'. Set
DNSCTL_FIXTURES=live with real credentials to refresh fixtures.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(CasesCommand())
	cmd.AddCommand(DeviationsCommand())

	return cmd
}

// CasesCommand returns the "conformance cases" subcommand.
func CasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the conformance cases in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range conformance.CaseNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
		SilenceUsage: true,
	}
}

// DeviationsCommand returns the "conformance deviations" subcommand.
func DeviationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deviations",
		Short: "List the cases each provider skips and why",
		Long: `List the conformance cases a provider adapter skips, with the reason
recorded for each.

Examples:
  dnsctl conformance deviations
  dnsctl conformance deviations -o json`,
		Args:         cobra.NoArgs,
		RunE:         runDeviations,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	return cmd
}

func runDeviations(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	deviations := conformance.Deviations(adapters.All()...)

	switch output {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(deviations)
	case "table":
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(deviations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Every provider passes every case.")
		return nil
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		rows := make([][]string, 0, len(deviations))
		for _, d := range deviations {
			rows = append(rows, []string{d.Provider, d.Case, d.Reason})
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"PROVIDER", "CASE", "REASON"}, rows, -1))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tCASE\tREASON")
	for _, d := range deviations {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Provider, d.Case, d.Reason)
	}
	return w.Flush()
}
