package expr

import (
	"fmt"

	prevet_errors "github.com/prevet-io/prevet/errors"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// Engine is the default expression engine. It is stateless: parsed
// expressions carry their own tree and every evaluation runs against a fresh
// per-call context, so a single Engine is safe for concurrent use.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// compiledExpression is a parsed policy declaration.
type compiledExpression struct {
	source string
	root   node
}

func (e *compiledExpression) Source() string {
	return e.source
}

// evaluationContext is the per-call state built for one check. Never cached.
type evaluationContext struct {
	identity   pdp_model.Identity
	invocation pdp_model.Invocation
}

// Parse compiles a raw declaration. Parsing is deterministic: the same input
// always yields a functionally identical expression.
func (e *Engine) Parse(expression string) (pdp_model.Expression, error) {
	root, err := NewParser(expression).Parse()
	if err != nil {
		return nil, err
	}
	return &compiledExpression{source: expression, root: root}, nil
}

func (e *Engine) NewEvaluationContext(identity pdp_model.Identity, invocation pdp_model.Invocation) pdp_model.EvaluationContext {
	return &evaluationContext{identity: identity, invocation: invocation}
}

// EvaluateAsBoolean evaluates expr against evalCtx and requires the outcome
// to be a boolean. Anything else is surfaced as a fault, never coerced to
// false.
func (e *Engine) EvaluateAsBoolean(expr pdp_model.Expression, evalCtx pdp_model.EvaluationContext) (bool, error) {
	compiled, ok := expr.(*compiledExpression)
	if !ok {
		return false, fmt.Errorf("%w: expression %q was not parsed by this engine", prevet_errors.ErrEvaluation, expr.Source())
	}
	ctx, ok := evalCtx.(*evaluationContext)
	if !ok {
		return false, fmt.Errorf("%w: evaluation context was not built by this engine", prevet_errors.ErrEvaluation)
	}

	result, err := compiled.root.eval(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: expression %q: %w", prevet_errors.ErrEvaluation, compiled.source, err)
	}
	granted, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression %q yielded %T", prevet_errors.ErrNonBooleanResult, compiled.source, result)
	}
	return granted, nil
}

func (n *literalNode) eval(_ *evaluationContext) (interface{}, error) {
	return n.value, nil
}

func (n *notNode) eval(ctx *evaluationContext) (interface{}, error) {
	v, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("operand of '!' is %T, not a boolean", v)
	}
	return !b, nil
}

func (n *binaryNode) eval(ctx *evaluationContext) (interface{}, error) {
	left, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case TokenAnd, TokenOr:
		lb, ok := left.(bool)
		if !ok {
			return nil, fmt.Errorf("operand of logical operator is %T, not a boolean", left)
		}
		// Short circuit
		if n.op == TokenAnd && !lb {
			return false, nil
		}
		if n.op == TokenOr && lb {
			return true, nil
		}
		right, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, fmt.Errorf("operand of logical operator is %T, not a boolean", right)
		}
		return rb, nil
	case TokenEq, TokenNeq:
		right, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		eq, err := equalValues(left, right)
		if err != nil {
			return nil, err
		}
		if n.op == TokenNeq {
			return !eq, nil
		}
		return eq, nil
	}
	return nil, fmt.Errorf("unsupported operator")
}

// equalValues compares two operand values. Operands are restricted to
// strings, booleans and numbers; structured values such as array claims are a
// fault, not a false. Numbers compare by value regardless of their Go type,
// since claims decoded from JSON arrive as float64 while integer literals
// parse as int.
func equalValues(left, right interface{}) (bool, error) {
	if err := comparableOperand(left); err != nil {
		return false, err
	}
	if err := comparableOperand(right); err != nil {
		return false, err
	}
	if lv, ok := numericValue(left); ok {
		rv, ok := numericValue(right)
		return ok && lv == rv, nil
	}
	if _, ok := numericValue(right); ok {
		return false, nil
	}
	return left == right, nil
}

func comparableOperand(v interface{}) error {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return nil
	}
	return fmt.Errorf("operand of comparison is %T, not a string, boolean or number", v)
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func (n *callNode) eval(ctx *evaluationContext) (interface{}, error) {
	args := make([]interface{}, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch n.name {
	case "permitAll":
		return true, nil
	case "denyAll":
		return false, nil
	case "isAuthenticated":
		return ctx.identity.Authenticated, nil
	case "isAnonymous":
		return !ctx.identity.Authenticated, nil
	case "principal":
		return ctx.identity.Subject, nil
	case "hasRole":
		role, err := stringArg(n.name, args[0])
		if err != nil {
			return nil, err
		}
		return ctx.identity.HasRole(role), nil
	case "hasAnyRole":
		for _, a := range args {
			role, err := stringArg(n.name, a)
			if err != nil {
				return nil, err
			}
			if ctx.identity.HasRole(role) {
				return true, nil
			}
		}
		return false, nil
	case "claim":
		key, err := stringArg(n.name, args[0])
		if err != nil {
			return nil, err
		}
		value, ok := ctx.identity.Claims[key]
		if !ok {
			return nil, fmt.Errorf("identity has no claim %q", key)
		}
		return value, nil
	case "arg":
		idx, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("argument to arg() is %T, not an integer", args[0])
		}
		if idx < 0 || idx >= len(ctx.invocation.Args) {
			return nil, fmt.Errorf("invocation has no argument %d", idx)
		}
		return ctx.invocation.Args[idx], nil
	}
	return nil, fmt.Errorf("unknown function %q", n.name)
}

func stringArg(fn string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument to %s() is %T, not a string", fn, v)
	}
	return s, nil
}
