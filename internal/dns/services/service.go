// Package services provides the DNS service layer.
//
// The Service type wraps a domain.Provider and adds input normalisation,
// validation, and default value application before delegating to the provider.
// CLI commands construct a Service from a resolved provider and call service
// methods rather than calling the provider directly.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/log"
	"nathanbeddoewebdev/dnsctl/internal/swrcache"
)

// Service is the DNS business logic layer for one domain. It sits between
// CLI commands and the provider, applying normalisation and validation to
// all inputs.
type Service struct {
	provider   domain.Provider
	domain     string
	defaultTTL int
	cache      *swrcache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables stale-while-revalidate caching for read operations.
func WithCache(cache *swrcache.Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithDefaultTTL overrides DefaultTTL for records created without a TTL.
func WithDefaultTTL(ttl int) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// New returns a Service backed by a provider bound to domainName.
func New(provider domain.Provider, domainName string, opts ...Option) *Service {
	svc := &Service{provider: provider, domain: names.Zone(domainName), defaultTTL: DefaultTTL}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// flushTimeout bounds how long Flush waits for cache refreshes.
const flushTimeout = 5 * time.Second

// Flush waits briefly for background cache refreshes started by list
// calls, so a short-lived process does not drop them.
func (s *Service) Flush(ctx context.Context) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	s.cache.Wait(ctx)
}

// Domain returns the normalised domain the service operates on.
func (s *Service) Domain() string { return s.domain }

// Authenticate checks the credentials and domain ownership.
func (s *Service) Authenticate(ctx context.Context) error {
	return s.provider.Authenticate(ctx)
}

// ListDomains returns all domains in the provider account. Providers that
// cannot enumerate zones fail with domain.ErrUnsupported.
func (s *Service) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	lister, ok := s.provider.(domain.DomainLister)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot list domains", domain.ErrUnsupported, s.provider.GetDisplayName())
	}
	if s.cache == nil {
		return lister.ListDomains(ctx)
	}

	key := cacheKey(s.provider.GetDisplayName(), "domains", s.domain)
	return swrcache.GetOrFetch(s.cache, ctx, key, lister.ListDomains)
}

// ListRecords returns the records of the domain matching filter.
func (s *Service) ListRecords(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if s.domain == "" {
		return nil, fmt.Errorf("domain name is required")
	}
	filter, err := normalizeFilter(filter, s.domain)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.provider.ListRecords(ctx, filter)
	}

	key := cacheKey(s.provider.GetDisplayName(), "records", s.domain, string(filter.Type), filter.Name, filter.Content)
	return swrcache.GetOrFetch(s.cache, ctx, key, func(ctx context.Context) ([]domain.Record, error) {
		return s.provider.ListRecords(ctx, filter)
	})
}

// CreateRecord creates a new DNS record after normalising and validating the opts.
func (s *Service) CreateRecord(ctx context.Context, opts domain.CreateRecordOpts) error {
	if s.domain == "" {
		return fmt.Errorf("domain name is required")
	}

	t, err := validateRecordType(opts.Type)
	if err != nil {
		return err
	}
	opts.Type = t
	if err := validateContent(opts.Type, opts.Content); err != nil {
		return err
	}
	if err := names.Validate(opts.Name, s.domain); err != nil {
		return err
	}

	// Apply default TTL if none specified.
	if opts.TTL <= 0 {
		opts.TTL = s.defaultTTL
	}

	// Normalise the subdomain portion.
	opts.Name = normalizeSubdomain(opts.Name, s.domain)

	err = s.provider.CreateRecord(ctx, opts)
	s.invalidate(ctx, err)
	return err
}

// UpdateRecord updates the records target selects after normalising and
// validating opts.
func (s *Service) UpdateRecord(ctx context.Context, target domain.Target, opts domain.UpdateRecordOpts) error {
	target, err := s.normalizeTarget(target)
	if err != nil {
		return err
	}

	if opts.Type != "" {
		t, err := validateRecordType(opts.Type)
		if err != nil {
			return err
		}
		opts.Type = t
	}
	if opts.Content != "" {
		typ := opts.Type
		if typ == "" {
			typ = target.Type
		}
		if err := validateContent(typ, opts.Content); err != nil {
			return err
		}
	}
	if opts.Name != "" {
		if err := names.Validate(opts.Name, s.domain); err != nil {
			return err
		}
		// An empty name means "keep the current name", so the apex stays "@".
		opts.Name = normalizeSubdomain(opts.Name, s.domain)
		if opts.Name == "" {
			opts.Name = "@"
		}
	}

	err = s.provider.UpdateRecord(ctx, target, opts)
	s.invalidate(ctx, err)
	return err
}

// DeleteRecord deletes the records target selects.
func (s *Service) DeleteRecord(ctx context.Context, target domain.Target) error {
	target, err := s.normalizeTarget(target)
	if err != nil {
		return err
	}
	err = s.provider.DeleteRecord(ctx, target)
	s.invalidate(ctx, err)
	return err
}

func (s *Service) normalizeTarget(target domain.Target) (domain.Target, error) {
	if s.domain == "" {
		return target, fmt.Errorf("domain name is required")
	}
	if target.IsZero() {
		return target, fmt.Errorf("record ID or filter is required")
	}
	filter, err := normalizeFilter(target.Filter, s.domain)
	if err != nil {
		return target, err
	}
	target.Filter = filter
	return target, nil
}

// invalidate drops every cached listing of the domain after a successful
// write.
func (s *Service) invalidate(ctx context.Context, err error) {
	if err != nil || s.cache == nil {
		return
	}
	prefix := cachePrefix(s.provider.GetDisplayName(), "records", s.domain)
	if err := s.cache.InvalidatePrefix(prefix); err != nil {
		log.L(ctx).Warn("dns cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
