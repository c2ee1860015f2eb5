package auth

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/platform/providers"
	"nathanbeddoewebdev/dnsctl/internal/services/auth"
)

func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <provider>",
		Short: "Remove stored credentials for a provider",
		Long: `Remove every credential stored in the keychain for a provider.

Example:
  dnsctl auth logout porkbun`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := providers.Lookup(args[0])
			if spec == nil {
				return fmt.Errorf("unknown provider %q (known: %s)", args[0], strings.Join(knownProviders(), ", "))
			}
			if err := auth.Logout(authStore(), *spec); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for provider %s\n", spec.Provider)
			return nil
		},
		SilenceUsage: true,
	}
}
