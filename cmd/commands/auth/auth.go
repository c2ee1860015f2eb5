package auth

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nathanbeddoewebdev/dnsctl/internal/services/auth"
)

var (
	// authStore returns the credential store. Tests replace it.
	authStore = auth.DefaultStore

	// interactive reports whether prompts and styled output may be used.
	interactive = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication for DNS providers",
		Long: `Manage authentication for DNS providers.

Use this command group to store API credentials in the OS keychain,
remove them, and check that they work. Credentials can also be given as
DNSCTL_<PROVIDER>_<SETTING> environment variables or in a .env file.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(LogoutCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(VerifyCommand())

	return cmd
}
