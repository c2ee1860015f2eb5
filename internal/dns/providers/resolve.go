package providers

import (
	"context"
	"errors"
	"fmt"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
)

var errEmptyTarget = errors.New("target must select a record by id or filter")

type lister func(ctx context.Context, filter domain.Filter) ([]domain.Record, error)

// matchTargets returns the records selected by target. An identifier
// target lists the whole zone, a filter target lets the backend narrow
// the listing first.
func matchTargets(ctx context.Context, list lister, zone string, target domain.Target) ([]domain.Record, error) {
	if target.IsZero() {
		return nil, errEmptyTarget
	}
	filter := target.Filter
	if target.ID != "" {
		filter = domain.Filter{}
	}
	records, err := list(ctx, filter)
	if err != nil {
		return nil, err
	}
	return target.Select(records, zone), nil
}

// updateTargets resolves the records an update applies to under policy.
func updateTargets(ctx context.Context, list lister, zone string, target domain.Target, policy domain.MultiMatchPolicy) ([]domain.Record, error) {
	matched, err := matchTargets(ctx, list, zone, target)
	if err != nil {
		return nil, err
	}

	switch {
	case len(matched) == 0:
		return nil, fmt.Errorf("%w: no record matches %s", domain.ErrNotFound, target)
	case len(matched) == 1:
		return matched, nil
	}

	switch policy {
	case domain.MultiMatchFirst:
		return matched[:1], nil
	case domain.MultiMatchAll:
		return matched, nil
	default:
		return nil, fmt.Errorf("%w: %d records match %s", domain.ErrAmbiguousMatch, len(matched), target)
	}
}
