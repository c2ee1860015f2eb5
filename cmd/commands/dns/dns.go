package dns

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"nathanbeddoewebdev/dnsctl/internal/auditlog"
	"nathanbeddoewebdev/dnsctl/internal/config"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/dns/services"
	dnstui "nathanbeddoewebdev/dnsctl/internal/dns/tui"
	"nathanbeddoewebdev/dnsctl/internal/log"
	"nathanbeddoewebdev/dnsctl/internal/services/auth"
	"nathanbeddoewebdev/dnsctl/internal/swrcache"
)

var (
	// authStore returns the credential store. Tests replace it.
	authStore = auth.DefaultStore

	// interactive reports whether "dns list" may open the record browser.
	interactive = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

	browse = dnstui.Run
)

// NewCommand returns the top-level "dns" Cobra command with all subcommands attached.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Manage DNS records across providers",
		Long: `Create, list, update, and delete DNS records of one domain. List the
domains in your account and check credentials.`,
		PersistentPreRunE: resolveDNSTarget,
	}

	cmd.AddCommand(DomainsCommand())
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(UpdateCommand())
	cmd.AddCommand(DeleteCommand())
	cmd.AddCommand(CheckCommand())

	cmd.PersistentFlags().String("provider", "", "DNS provider to use (overrides dns-provider)")
	cmd.PersistentFlags().String("domain", "", "Domain to operate on (overrides dns-domain)")

	return cmd
}

// resolveDNSTarget ensures --provider and --domain have values, falling
// back to the dns-provider and dns-domain config keys when the flags were
// not explicitly set.
func resolveDNSTarget(cmd *cobra.Command, args []string) error {
	if cmd.Flag("provider").Changed && cmd.Flag("domain").Changed {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cmd.Flag("provider").Changed {
		if cfg.DNSProvider == "" {
			return fmt.Errorf("no DNS provider specified: use --provider flag or set a default with 'dnsctl config set dns-provider <name>'")
		}
		if err := cmd.Flag("provider").Value.Set(cfg.DNSProvider); err != nil {
			return fmt.Errorf("failed to set provider flag: %w", err)
		}
	}
	if !cmd.Flag("domain").Changed {
		if cfg.DNSDomain == "" {
			return fmt.Errorf("no domain specified: use --domain flag or set a default with 'dnsctl config set dns-domain <domain>'")
		}
		if err := cmd.Flag("domain").Value.Set(cfg.DNSDomain); err != nil {
			return fmt.Errorf("failed to set domain flag: %w", err)
		}
	}
	return nil
}

// newDNSService builds the provider for the resolved target and wraps it
// in a Service.
func newDNSService(cmd *cobra.Command) (*services.Service, error) {
	providerName := cmd.Flag("provider").Value.String()
	domainName := names.Zone(cmd.Flag("domain").Value.String())

	ctx := log.With(cmd.Context(), log.Provider(providerName, domainName)...)
	ctx = auditlog.WithMetadata(ctx, auditlog.Metadata{Provider: providerName, Domain: domainName})
	cmd.SetContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	provider, err := services.ProviderFor(cfg, authStore(), providerName, domainName)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithDefaultTTL(cfg.DefaultTTL)}
	if os.Getenv(services.DisableCacheEnv) != "1" {
		opts = append(opts, services.WithCache(swrcache.NewDefault()))
	}
	log.L(ctx).Debug("dns service ready", zap.String("display_name", provider.GetDisplayName()))
	return services.New(provider, domainName, opts...), nil
}

// addFilterFlags registers the record selection flags shared by list,
// update and delete.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Record type (A, AAAA, CNAME, MX, TXT, etc.)")
	cmd.Flags().String("name", "", "Record name: relative, full or fully-qualified")
	cmd.Flags().String("content", "", "Record content")
}

func filterFromFlags(cmd *cobra.Command) (domain.Filter, error) {
	typ, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	content, _ := cmd.Flags().GetString("content")

	f := domain.Filter{Name: name, Content: content}
	if typ != "" {
		t, err := domain.ParseRecordType(typ)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	return f, nil
}

// targetFromFlags selects by --id when given, otherwise by the filter
// flags, which must not all be empty.
func targetFromFlags(cmd *cobra.Command) (domain.Target, error) {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return domain.Target{}, err
	}
	id, _ := cmd.Flags().GetString("id")
	target := domain.Target{ID: id, Filter: filter}
	if target.IsZero() {
		return target, fmt.Errorf("select records with --id or at least one of --type, --name, --content")
	}

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		RecordType: string(filter.Type),
		RecordName: filter.Name,
		RecordID:   id,
	}))
	return target, nil
}
