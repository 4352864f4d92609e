package engine

import (
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// AttributeLocator finds the single raw policy declaration that applies to a
// target. Method-level declarations always win; a type-level declaration is
// only the fallback default for members that declare none. Declarations are
// never merged. The locator is pure: caching is layered on top by the
// registry.
type AttributeLocator struct {
	source DeclarationSource
}

func NewAttributeLocator(source DeclarationSource) *AttributeLocator {
	return &AttributeLocator{source: source}
}

// Locate returns the applicable raw declaration for target, or false when
// neither the signature nor its declaring type carries one.
func (l *AttributeLocator) Locate(target pdp_model.Target) (string, bool) {
	if raw, ok := l.source.MethodDeclaration(target); ok {
		return raw, true
	}
	return l.source.TypeDeclaration(target.TypeID)
}
