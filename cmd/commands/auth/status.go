package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/platform/providers"
	"nathanbeddoewebdev/dnsctl/internal/services/auth"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

const (
	statusLoggedIn    = "logged in"
	statusEnvironment = "environment"
	statusPartial     = "partial"
	statusNotLoggedIn = "not logged in"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status for providers",
		Long: `Show which providers have stored or environment credentials.

Example:
  dnsctl auth status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := authStore()
			specs := providers.All()

			if len(specs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers registered.")
				return nil
			}

			rows := make([][]string, 0, len(specs))
			for _, spec := range specs {
				status, err := credentialStatus(store, spec)
				if err != nil {
					status = fmt.Sprintf("error (%v)", err)
				}
				rows = append(rows, []string{spec.Provider, spec.DisplayName, status})
			}

			if interactive() {
				fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"PROVIDER", "NAME", "STATUS"}, rows, 2))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", row[0], row[2])
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}

// credentialStatus summarizes where the credentials of spec come from.
// The environment wins over the keychain, as it does for DNS commands.
func credentialStatus(store auth.Store, spec providers.CredentialSpec) (string, error) {
	env := engine.FromEnv(spec.Provider, spec.SettingKeys()...)

	var fromEnv, fromStore int
	for _, k := range spec.Keys {
		if env.Get(k.Setting) != "" {
			fromEnv++
			continue
		}
		_, err := store.GetToken(spec.KeychainKey(k))
		switch {
		case err == nil:
			fromStore++
		case errors.Is(err, auth.ErrTokenNotFound):
		default:
			return "", err
		}
	}

	switch {
	case fromEnv == len(spec.Keys):
		return statusEnvironment, nil
	case fromEnv+fromStore == len(spec.Keys):
		return statusLoggedIn, nil
	case fromEnv+fromStore > 0:
		return statusPartial, nil
	default:
		return statusNotLoggedIn, nil
	}
}
