package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prevet-io/prevet/pdp/engine"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

func TestAttributeLocator(t *testing.T) {
	source := newStubSource()
	source.methods[pdp_model.NewTarget("OrderService", "Cancel")] = "hasRole('ADMIN')"
	source.types["OrderService"] = "isAuthenticated()"
	source.types["ReportService"] = "hasRole('AUDITOR')"

	locator := engine.NewAttributeLocator(source)

	t.Run("MethodDeclarationWins", func(t *testing.T) {
		raw, ok := locator.Locate(pdp_model.NewTarget("OrderService", "Cancel"))
		assert.True(t, ok)
		assert.Equal(t, "hasRole('ADMIN')", raw)
	})

	t.Run("TypeDeclarationIsFallback", func(t *testing.T) {
		raw, ok := locator.Locate(pdp_model.NewTarget("OrderService", "List"))
		assert.True(t, ok)
		assert.Equal(t, "isAuthenticated()", raw)

		raw, ok = locator.Locate(pdp_model.NewTarget("ReportService", "Export"))
		assert.True(t, ok)
		assert.Equal(t, "hasRole('AUDITOR')", raw)
	})

	t.Run("NoDeclaration", func(t *testing.T) {
		raw, ok := locator.Locate(pdp_model.NewTarget("HealthService", "Ping"))
		assert.False(t, ok)
		assert.Empty(t, raw)
	})
}
