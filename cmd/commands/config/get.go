package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nathanbeddoewebdev/dnsctl/internal/config"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Print one configuration value, or every value when no key is given.\n\n" +
			config.KeysHelp() +
			"  <provider>.<setting>  Per-provider engine setting (" + strings.Join(config.ProviderSettingNames, ", ") + ")\n" +
			"\nExamples:\n" +
			"  dnsctl config get\n" +
			"  dnsctl config get dns-provider\n" +
			"  dnsctl config get zonomi.api_endpoint",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		value, err := lookupValue(cfg, args[0])
		if err != nil {
			return err
		}
		if value == "" {
			value = "not set"
		}
		fmt.Fprintln(out, value)
		return nil
	}

	rows := allValues(cfg)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(out, tui.Table([]string{"KEY", "VALUE"}, rows, -1))
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
	}
	return nil
}

func lookupValue(cfg *config.Config, key string) (string, error) {
	provider, setting, scoped, err := config.ParseProviderKey(key)
	switch {
	case err != nil:
		return "", err
	case scoped:
		return cfg.ProviderSetting(provider, setting), nil
	}

	spec := config.Lookup(key)
	if spec == nil {
		return "", fmt.Errorf("unknown configuration key %q (valid: %s)", key, strings.Join(config.KeyNames(), ", "))
	}
	return spec.Get(cfg), nil
}

// allValues lists the global keys, then every stored provider setting
// sorted by key.
func allValues(cfg *config.Config) [][]string {
	rows := make([][]string, 0, len(config.Keys))
	for _, spec := range config.Keys {
		value := spec.Get(cfg)
		if value == "" {
			value = "(not set)"
		}
		rows = append(rows, []string{spec.Name, value})
	}

	var scoped [][]string
	for provider, settings := range cfg.Providers {
		for setting, value := range settings {
			scoped = append(scoped, []string{provider + "." + setting, value})
		}
	}
	slices.SortFunc(scoped, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return append(rows, scoped...)
}
