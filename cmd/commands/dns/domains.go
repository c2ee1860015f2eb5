package dns

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// DomainsCommand returns the "dns domains" subcommand.
func DomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List domains in the provider account",
		Long: `List all domains registered in the DNS provider account. Providers are
bound to a domain, so --domain (or dns-domain) must name any domain the
credentials can reach.

Example:
  dnsctl dns domains --provider porkbun --domain example.com`,
		Args:         cobra.NoArgs,
		RunE:         runDomains,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	return cmd
}

func runDomains(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	defer svc.Flush(cmd.Context())

	domains, err := svc.ListDomains(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing domains: %w", err)
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(domains)
	}

	if len(domains) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No domains found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tSTATUS\tTLD\tEXPIRES")
	fmt.Fprintln(w, "------\t------\t---\t-------")

	for _, d := range domains {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Name,
			d.Status,
			d.TLD,
			d.ExpireDate,
		)
	}

	return w.Flush()
}
