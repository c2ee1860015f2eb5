package auth

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/platform/providers"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

// credentialFlags maps a credential key suffix to the login flag that
// carries it.
var credentialFlags = map[string]string{
	"":             "token",
	"apikey":       "api-key",
	"secretapikey": "secret-key",
}

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Store API credentials for a provider",
		Long: `Store API credentials for a provider using the local keychain.

Without flags the credentials are prompted for.

Examples:
  dnsctl auth login zonomi
  dnsctl auth login cloudflare --token <token>
  dnsctl auth login porkbun --api-key <key> --secret-key <secret>`,
		Args:         cobra.ExactArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "API token for single-token providers (overrides prompt)")
	cmd.Flags().String("api-key", "", "API key for key and secret providers (overrides prompt)")
	cmd.Flags().String("secret-key", "", "Secret API key for key and secret providers (overrides prompt)")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	spec := providers.Lookup(args[0])
	if spec == nil {
		return fmt.Errorf("unknown provider %q (known: %s)", args[0], strings.Join(knownProviders(), ", "))
	}

	values, missing := credentialsFromFlags(cmd, *spec)
	if len(missing) > 0 {
		if !interactive() {
			return fmt.Errorf("%s requires %s when not running in a terminal", spec.Provider, strings.Join(missing, ", "))
		}
		prompted, err := tui.PromptCredentials(*spec)
		if err != nil {
			return err
		}
		values = prompted
	}

	store := authStore()
	for _, k := range spec.Keys {
		key := spec.KeychainKey(k)
		if err := store.SetToken(key, values[key]); err != nil {
			return fmt.Errorf("failed to store %s: %w", k.Prompt, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for provider %s\n", spec.Provider)
	return nil
}

// credentialsFromFlags collects the flag values for spec, keyed by
// keychain key, and names the flags still missing.
func credentialsFromFlags(cmd *cobra.Command, spec providers.CredentialSpec) (map[string]string, []string) {
	values := make(map[string]string, len(spec.Keys))
	var missing []string
	for _, k := range spec.Keys {
		flag := credentialFlags[k.Key]
		v, _ := cmd.Flags().GetString(flag)
		v = strings.TrimSpace(v)
		if v == "" {
			missing = append(missing, "--"+flag)
			continue
		}
		values[spec.KeychainKey(k)] = v
	}
	return values, missing
}

func knownProviders() []string {
	specs := providers.All()
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Provider)
	}
	return out
}
