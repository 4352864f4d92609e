// Package catalog holds the policy declaration table the attribute locator
// reads. Hosts register declarations at setup time, either directly or
// through the config, Redis or Neo4j loaders.
package catalog

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	prevet_errors "github.com/prevet-io/prevet/errors"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// Declaration is a single policy declaration as registered by the host or
// loaded from a backing store. An empty Method makes it a type-level default.
type Declaration struct {
	Type       string `json:"type" mapstructure:"type" validate:"required"`
	Method     string `json:"method,omitempty" mapstructure:"method"`
	Expression string `json:"expression" mapstructure:"expression" validate:"required"`
}

// Catalog is an in-process declaration table. Registration happens at setup
// time; lookups dominate afterwards, so reads take the shared lock.
type Catalog struct {
	mu       sync.RWMutex
	types    map[string]string
	methods  map[pdp_model.Target]string
	validate *validator.Validate
}

func New() *Catalog {
	return &Catalog{
		types:    make(map[string]string),
		methods:  make(map[pdp_model.Target]string),
		validate: validator.New(),
	}
}

// Register validates and stores a declaration. A later registration for the
// same type or method replaces the earlier one; replacement only matters
// before the first check resolves the target, since the attribute registry
// never re-resolves.
func (c *Catalog) Register(decl Declaration) error {
	if err := c.validate.Struct(decl); err != nil {
		return fmt.Errorf("%w: %w", prevet_errors.ErrInvalidDeclaration, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if decl.Method == "" {
		c.types[decl.Type] = decl.Expression
	} else {
		c.methods[pdp_model.NewTarget(decl.Type, decl.Method)] = decl.Expression
	}
	return nil
}

// SecureType attaches a type-level declaration: the fallback default for
// every member of typeID that declares nothing itself.
func (c *Catalog) SecureType(typeID, expression string) error {
	return c.Register(Declaration{Type: typeID, Expression: expression})
}

// SecureMethod attaches a method-level declaration to one signature.
func (c *Catalog) SecureMethod(typeID, signatureID, expression string) error {
	return c.Register(Declaration{Type: typeID, Method: signatureID, Expression: expression})
}

func (c *Catalog) MethodDeclaration(target pdp_model.Target) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.methods[target]
	return raw, ok
}

func (c *Catalog) TypeDeclaration(typeID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.types[typeID]
	return raw, ok
}

// Declarations returns a snapshot of everything registered.
func (c *Catalog) Declarations() []Declaration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	decls := make([]Declaration, 0, len(c.types)+len(c.methods))
	for typeID, expression := range c.types {
		decls = append(decls, Declaration{Type: typeID, Expression: expression})
	}
	for target, expression := range c.methods {
		decls = append(decls, Declaration{Type: target.TypeID, Method: target.SignatureID, Expression: expression})
	}
	return decls
}

// Targets returns every method-level target currently registered.
func (c *Catalog) Targets() []pdp_model.Target {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets := make([]pdp_model.Target, 0, len(c.methods))
	for target := range c.methods {
		targets = append(targets, target)
	}
	return targets
}
