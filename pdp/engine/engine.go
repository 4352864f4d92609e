package engine

import (
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// ExpressionEngine parses policy declarations and evaluates them per call.
// The implementation is swappable at setup time; the decision manager
// validates it eagerly and treats a nil engine as a configuration fault.
type ExpressionEngine interface {
	// Parse compiles a raw policy declaration into a reusable expression.
	Parse(expression string) (pdp_model.Expression, error)

	// NewEvaluationContext builds the per-call state an expression is
	// evaluated against. The result is owned by the call in progress and
	// must never be cached or shared.
	NewEvaluationContext(identity pdp_model.Identity, invocation pdp_model.Invocation) pdp_model.EvaluationContext

	// EvaluateAsBoolean evaluates expr against evalCtx and requires a
	// boolean outcome. A non-boolean result is an evaluation fault, not a
	// deny.
	EvaluateAsBoolean(expr pdp_model.Expression, evalCtx pdp_model.EvaluationContext) (bool, error)
}

// DeclarationSource is the descriptor table the locator reads: raw policy
// declarations keyed by method signature or by declaring type.
type DeclarationSource interface {
	MethodDeclaration(target pdp_model.Target) (string, bool)
	TypeDeclaration(typeID string) (string, bool)
}
