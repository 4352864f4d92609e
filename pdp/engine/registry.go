package engine

import (
	"fmt"
	"sync"

	prevet_errors "github.com/prevet-io/prevet/errors"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// AttributeRegistry memoizes locate+parse per target. Steady-state reads go
// through the sync.Map without locking; cache misses resolve under a mutex
// with a re-check, so concurrent first lookups of one target observe exactly
// one locate and at most one parse. Entries are never invalidated: policy
// declarations are static for the process lifetime.
type AttributeRegistry struct {
	locator *AttributeLocator
	engine  func() ExpressionEngine

	cache   sync.Map // pdp_model.Target -> *pdp_model.PolicyAttribute
	resolve sync.Mutex
}

func NewAttributeRegistry(locator *AttributeLocator, engine func() ExpressionEngine) *AttributeRegistry {
	return &AttributeRegistry{locator: locator, engine: engine}
}

// Get returns the cached attribute for target, resolving it on first lookup.
// Targets without a declaration cache the shared NoPolicy attribute. A parse
// failure propagates as an error and is not cached: a malformed policy is a
// configuration defect, not an absence of policy, and will fault again on the
// next call unless corrected.
func (r *AttributeRegistry) Get(target pdp_model.Target) (*pdp_model.PolicyAttribute, error) {
	if cached, ok := r.cache.Load(target); ok {
		return cached.(*pdp_model.PolicyAttribute), nil
	}

	r.resolve.Lock()
	defer r.resolve.Unlock()

	// Another caller may have resolved the target while we waited.
	if cached, ok := r.cache.Load(target); ok {
		return cached.(*pdp_model.PolicyAttribute), nil
	}

	raw, ok := r.locator.Locate(target)
	if !ok {
		r.cache.Store(target, pdp_model.NoPolicy)
		return pdp_model.NoPolicy, nil
	}

	expr, err := r.engine().Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: target %s, expression %q: %w", prevet_errors.ErrPolicyParse, target, raw, err)
	}

	attr := pdp_model.NewPolicyAttribute(expr)
	r.cache.Store(target, attr)
	return attr, nil
}

// Verify parses raw with the current engine without touching the cache. The
// warmup path uses it for type-level declarations, which have no target of
// their own until a member without a method-level declaration resolves.
func (r *AttributeRegistry) Verify(typeID, raw string) error {
	if _, err := r.engine().Parse(raw); err != nil {
		return fmt.Errorf("%w: type %s, expression %q: %w", prevet_errors.ErrPolicyParse, typeID, raw, err)
	}
	return nil
}
