package engine

import (
	"sync"

	prevet_errors "github.com/prevet-io/prevet/errors"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// DecisionManager is the entry point for pre-invocation authorization checks.
// It owns the attribute registry and the pluggable expression engine.
type DecisionManager struct {
	registry *AttributeRegistry

	mu     sync.RWMutex
	engine ExpressionEngine
}

// NewDecisionManager builds a manager over the given declaration source and
// expression engine. A nil engine is rejected here, at configuration time.
func NewDecisionManager(source DeclarationSource, eng ExpressionEngine) (*DecisionManager, error) {
	if eng == nil {
		return nil, prevet_errors.ErrNilExpressionEngine
	}
	m := &DecisionManager{engine: eng}
	m.registry = NewAttributeRegistry(NewAttributeLocator(source), m.currentEngine)
	return m, nil
}

// SetExpressionEngine swaps the expression engine. Intended for setup time;
// attributes already parsed by the previous engine stay cached.
func (m *DecisionManager) SetExpressionEngine(eng ExpressionEngine) error {
	if eng == nil {
		return prevet_errors.ErrNilExpressionEngine
	}
	m.mu.Lock()
	m.engine = eng
	m.mu.Unlock()
	return nil
}

func (m *DecisionManager) currentEngine() ExpressionEngine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// Registry exposes the attribute registry, for catalog warmup.
func (m *DecisionManager) Registry() *AttributeRegistry {
	return m.registry
}

// Check decides whether the caller may perform the given invocation. A nil
// decision with a nil error means the manager abstained: no policy applies to
// the target, and the host must defer to its own composition rule rather than
// read it as a grant or a deny. The identity supplier is invoked at most
// once, and only when a policy attribute is present. Faults from parsing or
// evaluation propagate to the caller untouched; nothing is retried, logged,
// or suppressed here.
func (m *DecisionManager) Check(supplier pdp_model.IdentitySupplier, invocation pdp_model.Invocation) (*pdp_model.Decision, error) {
	attr, err := m.registry.Get(invocation.Target)
	if err != nil {
		return nil, err
	}
	if attr == pdp_model.NoPolicy {
		return nil, nil
	}

	eng := m.currentEngine()
	evalCtx := eng.NewEvaluationContext(supplier(), invocation)
	granted, err := eng.EvaluateAsBoolean(attr.Expression(), evalCtx)
	if err != nil {
		return nil, err
	}
	return pdp_model.NewDecision(granted), nil
}
