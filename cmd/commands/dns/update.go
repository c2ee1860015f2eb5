package dns

import (
	"fmt"

	"github.com/spf13/cobra"

	dnsdomain "nathanbeddoewebdev/dnsctl/internal/dns/domain"
)

// UpdateCommand returns the "dns update" subcommand.
func UpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update DNS records",
		Long: `Update the records selected by --id or by the filter flags. When a
filter matches several records the provider's policy applies: Zonomi and
Porkbun refuse, Cloudflare updates every match.

Examples:
  dnsctl dns update --id 106926659 --new-content 5.6.7.8
  dnsctl dns update --type TXT --name _acme-challenge --new-content token2 --ttl 3600`,
		Args:         cobra.NoArgs,
		RunE:         runUpdate,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Identifier of the record to update")
	addFilterFlags(cmd)
	cmd.Flags().String("new-type", "", "New record type")
	cmd.Flags().String("new-name", "", "New record name")
	cmd.Flags().String("new-content", "", "New record content")
	cmd.Flags().Int("ttl", 0, "New time-to-live in seconds")
	cmd.Flags().Int("priority", 0, "New record priority")
	cmd.Flags().String("notes", "", "New notes (use empty string to clear)")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}

	newType, _ := cmd.Flags().GetString("new-type")
	newName, _ := cmd.Flags().GetString("new-name")
	newContent, _ := cmd.Flags().GetString("new-content")
	ttl, _ := cmd.Flags().GetInt("ttl")
	priority, _ := cmd.Flags().GetInt("priority")

	// Notes: nil means no change, pointer to empty string clears it.
	var notesPtr *string
	if cmd.Flags().Changed("notes") {
		v, _ := cmd.Flags().GetString("notes")
		notesPtr = &v
	}

	opts := dnsdomain.UpdateRecordOpts{
		Type:     dnsdomain.RecordType(newType),
		Name:     newName,
		Content:  newContent,
		TTL:      ttl,
		Priority: priority,
		Notes:    notesPtr,
	}
	if opts == (dnsdomain.UpdateRecordOpts{}) {
		return fmt.Errorf("nothing to update: pass at least one of --new-type, --new-name, --new-content, --ttl, --priority, --notes")
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	if err := svc.UpdateRecord(cmd.Context(), target, opts); err != nil {
		return fmt.Errorf("updating %s: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated records matching %s\n", target)
	return nil
}
