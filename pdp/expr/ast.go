package expr

// node is a node in the parsed expression tree.
type node interface {
	eval(ctx *evaluationContext) (interface{}, error)
}

// literalNode holds a string, integer or boolean literal.
type literalNode struct {
	value interface{}
}

// callNode is a built-in function call such as hasRole('ADMIN').
type callNode struct {
	name string
	args []node
	pos  int
}

// binaryNode covers &&, ||, == and !=.
type binaryNode struct {
	op    TokenType
	left  node
	right node
}

// notNode is logical negation.
type notNode struct {
	operand node
}
