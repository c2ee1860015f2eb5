package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nathanbeddoewebdev/dnsctl/internal/config"
	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	dnsproviders "nathanbeddoewebdev/dnsctl/internal/dns/providers"
	"nathanbeddoewebdev/dnsctl/internal/dns/services"
	"nathanbeddoewebdev/dnsctl/internal/log"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

// verifyConcurrency bounds the providers authenticated at once.
const verifyConcurrency = 4

type verifyResult struct {
	provider string
	status   string
	detail   string
}

func VerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [provider...]",
		Short: "Check that stored credentials work",
		Long: `Authenticate against each provider and check it manages the domain.
With no arguments every registered provider is checked; providers
without credentials are reported as skipped.

Examples:
  dnsctl auth verify --domain example.com
  dnsctl auth verify zonomi porkbun`,
		RunE:         runVerify,
		SilenceUsage: true,
	}
	cmd.Flags().String("domain", "", "Domain to verify against (default: dns-domain)")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	domainName, _ := cmd.Flags().GetString("domain")
	if domainName == "" {
		domainName = cfg.DNSDomain
	}
	if domainName == "" {
		return fmt.Errorf("no domain specified: use --domain flag or set a default with 'dnsctl config set dns-domain <domain>'")
	}
	domainName = names.Zone(domainName)

	targets := args
	if len(targets) == 0 {
		targets = dnsproviders.List()
	}

	results := make([]verifyResult, len(targets))
	check := func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(verifyConcurrency)
		for i, name := range targets {
			g.Go(func() error {
				results[i] = verifyProvider(gctx, cfg, name, domainName)
				return nil
			})
		}
		return g.Wait()
	}

	ctx := cmd.Context()
	if interactive() {
		err = tui.RunWithSpinner(ctx, fmt.Sprintf("Verifying credentials for %s...", domainName), check)
	} else {
		err = check(ctx)
	}
	if err != nil {
		return err
	}

	failed := 0
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.status == "failed" {
			failed++
		}
		rows = append(rows, []string{r.provider, r.status, r.detail})
	}

	if interactive() {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"PROVIDER", "STATUS", "DETAIL"}, rows, 1))
	} else {
		for _, row := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", row[0], strings.TrimSpace(row[1]+" "+row[2]))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d providers failed verification for %s", domain.ErrAuthentication, failed, len(results), domainName)
	}
	return nil
}

// verifyProvider authenticates one provider. Missing credentials are a
// skip, not a failure.
func verifyProvider(ctx context.Context, cfg *config.Config, name, domainName string) verifyResult {
	ctx = log.With(ctx, log.Provider(name, domainName)...)
	result := verifyResult{provider: name}

	provider, err := services.ProviderFor(cfg, authStore(), name, domainName)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			result.status = "skipped"
			result.detail = "no credentials"
			return result
		}
		result.status = "failed"
		result.detail = err.Error()
		return result
	}

	elapsed := log.Elapsed("elapsed")
	if err := provider.Authenticate(ctx); err != nil {
		log.L(ctx).Debug("verification failed", elapsed, zap.Error(err))
		result.status = "failed"
		result.detail = fmt.Sprintf("%s: %v", domain.Kind(err), err)
		return result
	}
	log.L(ctx).Debug("verified", elapsed)
	result.status = "ok"
	return result
}
