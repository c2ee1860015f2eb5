package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nathanbeddoewebdev/dnsctl/cmd/commands/audit"
	"nathanbeddoewebdev/dnsctl/cmd/commands/auth"
	cfgcmd "nathanbeddoewebdev/dnsctl/cmd/commands/config"
	"nathanbeddoewebdev/dnsctl/cmd/commands/conformance"
	"nathanbeddoewebdev/dnsctl/cmd/commands/dns"
	"nathanbeddoewebdev/dnsctl/internal/auditlog"
	"nathanbeddoewebdev/dnsctl/internal/config"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	dnsproviders "nathanbeddoewebdev/dnsctl/internal/dns/providers"
	"nathanbeddoewebdev/dnsctl/internal/log"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "dnsctl",
		Short: "A CLI tool for managing DNS records across providers",
		Long: `dnsctl manages DNS records through one interface for every supported
provider. Records can be addressed by name in relative ("www"), full
("www.example.com") or fully-qualified ("www.example.com.") form.

Supported providers: Cloudflare, Porkbun, Zonomi.

Quick start:
  dnsctl auth login zonomi                       # Store your API key
  dnsctl config set dns-provider zonomi
  dnsctl config set dns-domain example.com
  dnsctl dns list --type TXT
  dnsctl dns create --type TXT --name _acme-challenge --content token`,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-dev", false, "Human-readable development logging")
	cmd.PersistentFlags().String("config", "", "Config file (.json, .toml or .yaml)")
	cmd.PersistentFlags().String("env-file", "", "Load credentials from this .env file (default ./.env when present)")

	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(conformance.NewCommand())
	cmd.AddCommand(dns.NewCommand())

	return cmd
}

// setup runs before every command: it loads the env file, selects the
// config file and attaches the logger to the command context.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()

	if path, _ := flags.GetString("config"); path != "" {
		config.SetPath(path)
	}
	envFile, _ := flags.GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	level, _ := flags.GetString("log-level")
	dev, _ := flags.GetBool("log-dev")
	logger, err := log.New(level, dev)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.WithLogger(ctx, logger))
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableTraverseRunHooks = true
	dnsproviders.RegisterAll()

	start := time.Now()
	executed, err := rootCmd().ExecuteC()
	recordAudit(executed, os.Args[1:], err, start)

	if executed != nil && executed.Context() != nil {
		_ = log.L(executed.Context()).Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", domain.Kind(err), err)
		os.Exit(1)
	}
}

// recordAudit writes a best-effort audit entry for the executed command.
// Failures to open or write the audit database never change the exit
// status.
func recordAudit(cmd *cobra.Command, args []string, err error, start time.Time) {
	if cmd == nil || !shouldAudit(cmd) {
		return
	}

	repo, openErr := auditlog.Open()
	if openErr != nil {
		logAuditFailure(cmd, openErr)
		return
	}
	defer repo.Close()

	entry := &auditlog.AuditEntry{
		Timestamp:  start.UTC(),
		Command:    cmd.CommandPath(),
		Args:       strings.Join(auditlog.SanitizeArgs(args), " "),
		DurationMs: time.Since(start).Milliseconds(),
		Outcome:    auditlog.OutcomeSuccess,
	}
	if ctx := cmd.Context(); ctx != nil {
		entry.Apply(auditlog.MetadataFromContext(ctx))
	}
	if err != nil {
		entry.Outcome = auditlog.OutcomeError
		entry.ErrorKind = domain.Kind(err)
		entry.Detail = err.Error()
	}
	if saveErr := repo.Save(entry); saveErr != nil {
		logAuditFailure(cmd, saveErr)
	}
}

// shouldAudit skips help, completion and the audit commands themselves.
func shouldAudit(cmd *cobra.Command) bool {
	if !cmd.Runnable() {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "audit", "completion", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func logAuditFailure(cmd *cobra.Command, err error) {
	if ctx := cmd.Context(); ctx != nil {
		log.L(ctx).Debug("audit entry not recorded", zap.Error(err))
	}
}
