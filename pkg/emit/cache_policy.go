// SPDX-License-Identifier: MPL-2.0

package emit

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CacheExports makes the loader record a module before running its body,
	// so every later require of the same ID returns the same exports object
	// and circular imports observe a partially initialized module.
	CacheExports CachePolicy = "exports"
	// ReexecuteOnRequire makes every require call run the module body again.
	// Circular imports never terminate at runtime under this policy.
	ReexecuteOnRequire CachePolicy = "reexecute"

	// DefaultCachePolicy is used when no policy is configured.
	DefaultCachePolicy = CacheExports
)

// ErrInvalidCachePolicy is the sentinel error wrapped by InvalidCachePolicyError.
var ErrInvalidCachePolicy = errors.New("invalid loader cache policy")

type (
	// CachePolicy selects how the emitted loader treats repeated requires.
	CachePolicy string

	// InvalidCachePolicyError is returned for an unknown CachePolicy value.
	InvalidCachePolicyError struct {
		Value CachePolicy
	}
)

// ParseCachePolicy converts a configuration or flag value to a CachePolicy.
// Matching is case-insensitive; an empty value selects DefaultCachePolicy.
func ParseCachePolicy(s string) (CachePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCachePolicy, nil
	}
	p := CachePolicy(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// CachePolicies returns every supported policy.
func CachePolicies() []CachePolicy {
	return []CachePolicy{CacheExports, ReexecuteOnRequire}
}

// String returns the string representation of the CachePolicy.
func (p CachePolicy) String() string { return string(p) }

// Validate returns an error if p is not a supported policy.
func (p CachePolicy) Validate() error {
	switch p {
	case CacheExports, ReexecuteOnRequire:
		return nil
	default:
		return &InvalidCachePolicyError{Value: p}
	}
}

// Error implements the error interface for InvalidCachePolicyError.
func (e *InvalidCachePolicyError) Error() string {
	return fmt.Sprintf("invalid loader cache policy %q (valid: %s, %s)", e.Value, CacheExports, ReexecuteOnRequire)
}

// Unwrap returns ErrInvalidCachePolicy for errors.Is() compatibility.
func (e *InvalidCachePolicyError) Unwrap() error { return ErrInvalidCachePolicy }
