package core

import (
	"context"
	"errors"
	"time"
)

// CacheTier is one level of the search result cache
type CacheTier interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// TieredCache checks an in-process tier before a shared tier and
// back-fills the local tier on shared hits.
type TieredCache struct {
	local  CacheTier
	shared CacheTier
}

// NewTieredCache combines a local and a shared tier. Either may be nil.
func NewTieredCache(local, shared CacheTier) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

// Get returns the first hit, local tier first. A hit can still carry the
// error of a tier that failed along the way.
func (tc *TieredCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var errs []error
	if tc.local != nil {
		found, err := tc.local.Get(ctx, key, dest)
		if err != nil {
			errs = append(errs, err)
		} else if found {
			return true, nil
		}
	}
	if tc.shared != nil {
		found, err := tc.shared.Get(ctx, key, dest)
		if err != nil {
			errs = append(errs, err)
		} else if found {
			if tc.local != nil {
				if err := tc.local.Set(ctx, key, dest, 0); err != nil {
					errs = append(errs, err)
				}
			}
			return true, errors.Join(errs...)
		}
	}
	return false, errors.Join(errs...)
}

// Set writes value to every tier
func (tc *TieredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var errs []error
	if tc.local != nil {
		errs = append(errs, tc.local.Set(ctx, key, value, ttl))
	}
	if tc.shared != nil {
		errs = append(errs, tc.shared.Set(ctx, key, value, ttl))
	}
	return errors.Join(errs...)
}

// Invalidate clears every tier
func (tc *TieredCache) Invalidate(ctx context.Context) error {
	var errs []error
	if tc.local != nil {
		errs = append(errs, tc.local.Invalidate(ctx))
	}
	if tc.shared != nil {
		errs = append(errs, tc.shared.Invalidate(ctx))
	}
	return errors.Join(errs...)
}
