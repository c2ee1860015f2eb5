package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/config"
	dnsproviders "nathanbeddoewebdev/dnsctl/internal/dns/providers"
	"nathanbeddoewebdev/dnsctl/internal/util"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value. An empty value clears the key.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  dnsctl config set dns-provider zonomi\n" +
			"  dnsctl config set dns-domain example.com\n" +
			"  dnsctl config set default-ttl 3600\n" +
			"  dnsctl config set zonomi.api_endpoint https://zonomi.com/app",
		Args:         cobra.ExactArgs(2),
		RunE:         runSet,
		SilenceUsage: true,
	}

	return cmd
}

// validators maps key names to optional pre-save validation functions.
// Keys not present in this map are only checked by their KeySpec.
var validators = map[string]func(value string) error{
	"dns-provider": validateProvider,
}

func runSet(cmd *cobra.Command, args []string) error {
	value := strings.TrimSpace(args[1])

	provider, setting, scoped, err := config.ParseProviderKey(args[0])
	if err != nil {
		return err
	}
	if scoped {
		return setProviderSetting(cmd, provider, setting, value)
	}

	spec := config.Lookup(args[0])
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", args[0], strings.Join(config.KeyNames(), ", "))
	}
	if validate := validators[spec.Name]; validate != nil && value != "" {
		if err := validate(value); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := spec.Set(cfg, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", spec.Name, err)
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	report(cmd, spec.Name, spec.Get(cfg))
	return nil
}

func setProviderSetting(cmd *cobra.Command, provider, setting, value string) error {
	if err := validateProvider(provider); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetProviderSetting(provider, setting, value)
	if err := cfg.Save(); err != nil {
		return err
	}
	report(cmd, provider+"."+setting, value)
	return nil
}

func report(cmd *cobra.Command, key, value string) {
	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s cleared\n", key)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", key, value)
}

// validateProvider checks that the given name is a registered DNS provider.
func validateProvider(name string) error {
	known := dnsproviders.List()
	if slices.Contains(known, util.NormalizeKey(name)) {
		return nil
	}
	return fmt.Errorf("unknown provider %q (registered: %s)", name, strings.Join(known, ", "))
}
