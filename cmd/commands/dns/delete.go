package dns

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCommand returns the "dns delete" subcommand.
func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete DNS records",
		Long: `Delete the records selected by --id or by the filter flags. Deleting
records that do not exist succeeds.

Examples:
  dnsctl dns delete --id 106926659
  dnsctl dns delete --type TXT --name _acme-challenge --content token`,
		Args:         cobra.NoArgs,
		RunE:         runDelete,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Identifier of the record to delete")
	addFilterFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	if err := svc.DeleteRecord(cmd.Context(), target); err != nil {
		return fmt.Errorf("deleting %s: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted records matching %s\n", target)
	return nil
}
