// test/mock/authz.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prevet-io/prevet/catalog"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
	"github.com/prevet-io/prevet/service"
)

// MockAuthzService is a mock implementation of service.IAuthzService
type MockAuthzService struct {
	mock.Mock
}

func (m *MockAuthzService) Check(ctx context.Context, req service.CheckRequest, supplier pdp_model.IdentitySupplier) (*service.CheckResponse, error) {
	args := m.Called(ctx, req, supplier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckResponse), args.Error(1)
}

func (m *MockAuthzService) RegisterDeclaration(ctx context.Context, decl catalog.Declaration) error {
	args := m.Called(ctx, decl)
	return args.Error(0)
}

func (m *MockAuthzService) ListDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Declaration), args.Error(1)
}
