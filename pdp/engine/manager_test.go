package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prevet_errors "github.com/prevet-io/prevet/errors"
	"github.com/prevet-io/prevet/pdp/engine"
	"github.com/prevet-io/prevet/pdp/expr"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

func invocationOf(typeID, signatureID string) pdp_model.Invocation {
	return pdp_model.Invocation{Target: pdp_model.NewTarget(typeID, signatureID)}
}

func supplierOf(identity pdp_model.Identity) pdp_model.IdentitySupplier {
	return func() pdp_model.Identity { return identity }
}

func TestNewDecisionManagerRejectsNilEngine(t *testing.T) {
	_, err := engine.NewDecisionManager(newStubSource(), nil)
	assert.ErrorIs(t, err, prevet_errors.ErrNilExpressionEngine)
}

func TestSetExpressionEngineRejectsNil(t *testing.T) {
	manager, err := engine.NewDecisionManager(newStubSource(), expr.New())
	require.NoError(t, err)
	assert.ErrorIs(t, manager.SetExpressionEngine(nil), prevet_errors.ErrNilExpressionEngine)
	assert.NoError(t, manager.SetExpressionEngine(expr.New()))
}

func TestCheckGrantsAndDenies(t *testing.T) {
	source := newStubSource()
	source.methods[pdp_model.NewTarget("OrderService", "Cancel")] = "hasRole('ADMIN')"
	source.types["OrderService"] = "isAuthenticated()"

	manager, err := engine.NewDecisionManager(source, expr.New())
	require.NoError(t, err)

	admin := pdp_model.Identity{Subject: "alice", Roles: []string{"ADMIN"}, Authenticated: true}
	clerk := pdp_model.Identity{Subject: "bob", Roles: []string{"CLERK"}, Authenticated: true}

	t.Run("MethodDeclarationGrants", func(t *testing.T) {
		decision, err := manager.Check(supplierOf(admin), invocationOf("OrderService", "Cancel"))
		require.NoError(t, err)
		require.NotNil(t, decision)
		assert.True(t, decision.Granted)
	})

	t.Run("MethodDeclarationDenies", func(t *testing.T) {
		decision, err := manager.Check(supplierOf(clerk), invocationOf("OrderService", "Cancel"))
		require.NoError(t, err)
		require.NotNil(t, decision)
		assert.False(t, decision.Granted)
	})

	t.Run("TypeDeclarationInherited", func(t *testing.T) {
		decision, err := manager.Check(supplierOf(clerk), invocationOf("OrderService", "List"))
		require.NoError(t, err)
		require.NotNil(t, decision)
		assert.True(t, decision.Granted)

		decision, err = manager.Check(supplierOf(pdp_model.Anonymous), invocationOf("OrderService", "List"))
		require.NoError(t, err)
		require.NotNil(t, decision)
		assert.False(t, decision.Granted)
	})
}

func TestCheckAbstainsWithoutDeclaration(t *testing.T) {
	manager, err := engine.NewDecisionManager(newStubSource(), expr.New())
	require.NoError(t, err)

	supplierCalls := 0
	supplier := func() pdp_model.Identity {
		supplierCalls++
		return pdp_model.Anonymous
	}

	decision, err := manager.Check(supplier, invocationOf("HealthService", "Ping"))
	require.NoError(t, err)
	assert.Nil(t, decision, "a target without a declaration must abstain, not deny")
	assert.Equal(t, 0, supplierCalls, "identity must not be resolved when no policy applies")
}

func TestCheckResolvesIdentityOnce(t *testing.T) {
	source := newStubSource()
	source.methods[pdp_model.NewTarget("OrderService", "Cancel")] = "hasRole('ADMIN') || hasRole('SUPPORT')"

	manager, err := engine.NewDecisionManager(source, expr.New())
	require.NoError(t, err)

	supplierCalls := 0
	supplier := func() pdp_model.Identity {
		supplierCalls++
		return pdp_model.Identity{Subject: "alice", Roles: []string{"SUPPORT"}, Authenticated: true}
	}

	decision, err := manager.Check(supplier, invocationOf("OrderService", "Cancel"))
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.True(t, decision.Granted)
	assert.Equal(t, 1, supplierCalls)
}

func TestCheckNonBooleanResultIsAFault(t *testing.T) {
	source := newStubSource()
	source.methods[pdp_model.NewTarget("OrderService", "Cancel")] = "principal()"

	manager, err := engine.NewDecisionManager(source, expr.New())
	require.NoError(t, err)

	decision, err := manager.Check(supplierOf(pdp_model.Anonymous), invocationOf("OrderService", "Cancel"))
	assert.Nil(t, decision)
	assert.ErrorIs(t, err, prevet_errors.ErrNonBooleanResult)
}

func TestCheckPropagatesParseFaults(t *testing.T) {
	source := newStubSource()
	source.methods[pdp_model.NewTarget("OrderService", "Cancel")] = "hasRole('ADMIN'"

	manager, err := engine.NewDecisionManager(source, expr.New())
	require.NoError(t, err)

	supplierCalls := 0
	supplier := func() pdp_model.Identity {
		supplierCalls++
		return pdp_model.Anonymous
	}

	_, err = manager.Check(supplier, invocationOf("OrderService", "Cancel"))
	assert.ErrorIs(t, err, prevet_errors.ErrPolicyParse)
	assert.Equal(t, 0, supplierCalls)
}
