package engine_test

import (
	"fmt"
	"sync"

	"github.com/prevet-io/prevet/pdp/engine"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// stubSource is an instrumented declaration table that counts lookups.
type stubSource struct {
	mu          sync.Mutex
	methods     map[pdp_model.Target]string
	types       map[string]string
	methodCalls int
	typeCalls   int
}

func newStubSource() *stubSource {
	return &stubSource{
		methods: make(map[pdp_model.Target]string),
		types:   make(map[string]string),
	}
}

func (s *stubSource) MethodDeclaration(target pdp_model.Target) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methodCalls++
	raw, ok := s.methods[target]
	return raw, ok
}

func (s *stubSource) TypeDeclaration(typeID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typeCalls++
	raw, ok := s.types[typeID]
	return raw, ok
}

func (s *stubSource) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.methodCalls
}

// stubExpression records the raw string it was parsed from.
type stubExpression struct {
	raw string
}

func (e *stubExpression) Source() string { return e.raw }

// stubEngine is an instrumented expression engine. Parsing counts calls and
// can be forced to fail; evaluation returns a fixed result.
type stubEngine struct {
	mu         sync.Mutex
	parseCalls int
	parseErr   error
	result     interface{}
	evalErr    error
}

var _ engine.ExpressionEngine = (*stubEngine)(nil)

func newStubEngine(result interface{}) *stubEngine {
	return &stubEngine{result: result}
}

func (e *stubEngine) Parse(expression string) (pdp_model.Expression, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parseCalls++
	if e.parseErr != nil {
		return nil, e.parseErr
	}
	return &stubExpression{raw: expression}, nil
}

func (e *stubEngine) NewEvaluationContext(identity pdp_model.Identity, invocation pdp_model.Invocation) pdp_model.EvaluationContext {
	return identity
}

func (e *stubEngine) EvaluateAsBoolean(expr pdp_model.Expression, evalCtx pdp_model.EvaluationContext) (bool, error) {
	if e.evalErr != nil {
		return false, e.evalErr
	}
	granted, ok := e.result.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q yielded %T, not a boolean", expr.Source(), e.result)
	}
	return granted, nil
}

func (e *stubEngine) parses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parseCalls
}
