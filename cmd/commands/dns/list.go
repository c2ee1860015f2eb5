package dns

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ListCommand returns the "dns list" subcommand.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List DNS records of the domain",
		Long: `List the DNS records of the domain, optionally filtered. Filters are
combined: every given flag must match.

On a terminal, without filters or -o json, the list opens an interactive
browser to show, create, edit and delete records.

Examples:
  dnsctl dns list --domain example.com
  dnsctl dns list --type TXT --name _acme-challenge
  dnsctl dns list --name www.example.com. -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	defer svc.Flush(cmd.Context())

	if output == "table" && filter.IsZero() && interactive() {
		return browse(cmd.Context(), svc, cmd.Flag("provider").Value.String())
	}

	records, err := svc.ListRecords(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONTENT\tTTL\tPRIORITY")
	fmt.Fprintln(w, "--\t----\t----\t-------\t---\t--------")

	for _, r := range records {
		prio := ""
		if r.Priority > 0 {
			prio = fmt.Sprintf("%d", r.Priority)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.Name,
			string(r.Type),
			r.Content,
			r.TTL,
			prio,
		)
	}

	return w.Flush()
}
