package config

import (
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/config"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dnsctl configuration",
		Long: "View and modify persistent dnsctl settings.\n\n" +
			"Configuration is stored at ~/.config/dnsctl/config.json. A config.toml\n" +
			"or config.yaml given with --config is read and written in its own format.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
