package model

// Expression is a pre-parsed policy expression. It is owned by whichever
// expression engine produced it; this package only carries it around.
type Expression interface {
	Source() string
}

// EvaluationContext is the per-call evaluation state built by the expression
// engine from an identity and an invocation. Opaque to everything else.
type EvaluationContext interface{}

// PolicyAttribute is the resolved policy for a target: either NoPolicy or a
// wrapped pre-parsed expression. Immutable once created.
type PolicyAttribute struct {
	expr Expression
}

// NoPolicy is the shared attribute cached for targets that carry no policy
// declaration. Compared by identity, never parsed.
var NoPolicy = &PolicyAttribute{}

func NewPolicyAttribute(expr Expression) *PolicyAttribute {
	return &PolicyAttribute{expr: expr}
}

// Expression returns the pre-parsed expression. Nil for NoPolicy.
func (a *PolicyAttribute) Expression() Expression {
	return a.expr
}
