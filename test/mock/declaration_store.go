// test/mock/declaration_store.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prevet-io/prevet/catalog"
)

// MockDeclarationStore is a mock implementation of service.DeclarationStore
type MockDeclarationStore struct {
	mock.Mock
}

func (m *MockDeclarationStore) FetchDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Declaration), args.Error(1)
}

func (m *MockDeclarationStore) UpsertDeclaration(ctx context.Context, decl catalog.Declaration) error {
	args := m.Called(ctx, decl)
	return args.Error(0)
}
