package dns

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckCommand returns the "dns check" subcommand.
func CheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify credentials and domain ownership",
		Long: `Authenticate against the provider and confirm the account manages the
domain.

Example:
  dnsctl dns check --provider zonomi --domain example.com`,
		Args:         cobra.NoArgs,
		RunE:         runCheck,
		SilenceUsage: true,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	if err := svc.Authenticate(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s manages %s\n", cmd.Flag("provider").Value.String(), svc.Domain())
	return nil
}
