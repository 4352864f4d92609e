// controller/authz_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/prevet-io/prevet/catalog"
	"github.com/prevet-io/prevet/controller"
	prevet_errors "github.com/prevet-io/prevet/errors"
	logger "github.com/prevet-io/prevet/logging"
	"github.com/prevet-io/prevet/service"
	mock_service "github.com/prevet-io/prevet/test/mock"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "prevet-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)
	gin.SetMode(gin.TestMode)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func setupRouter(svc service.IAuthzService) *gin.Engine {
	r := gin.New()
	api := r.Group("/")
	controller.NewAuthzController(svc).RegisterRoutes(api)
	return r
}

func TestAuthzController(t *testing.T) {
	mockAuthzService := new(mock_service.MockAuthzService)
	router := setupRouter(mockAuthzService)

	t.Run("Check_Granted", func(t *testing.T) {
		granted := true
		mockAuthzService.On("Check", mock.Anything, mock.Anything, mock.Anything).
			Return(&service.CheckResponse{DecisionID: "d-1", Outcome: service.OutcomeGranted, Granted: &granted}, nil).Once()

		body := strings.NewReader(`{"target_type":"OrderService","signature":"Cancel"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp service.CheckResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, service.OutcomeGranted, resp.Outcome)
	})

	t.Run("Check_InvalidBody", func(t *testing.T) {
		body := strings.NewReader(`{"signature":"Cancel"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Check_ParseFault", func(t *testing.T) {
		mockAuthzService.On("Check", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, prevet_errors.ErrPolicyParse).Once()

		body := strings.NewReader(`{"target_type":"OrderService","signature":"Cancel"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/check", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("RegisterDeclaration_Success", func(t *testing.T) {
		mockAuthzService.On("RegisterDeclaration", mock.Anything, mock.Anything).
			Return(nil).Once()

		body := strings.NewReader(`{"type":"OrderService","method":"Cancel","expression":"hasRole('ADMIN')"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("RegisterDeclaration_Invalid", func(t *testing.T) {
		mockAuthzService.On("RegisterDeclaration", mock.Anything, mock.Anything).
			Return(prevet_errors.ErrInvalidDeclaration).Once()

		body := strings.NewReader(`{"type":"OrderService","expression":""}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListDeclarations", func(t *testing.T) {
		mockAuthzService.On("ListDeclarations", mock.Anything).
			Return([]catalog.Declaration{{Type: "OrderService", Expression: "isAuthenticated()"}}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var decls []catalog.Declaration
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &decls))
		assert.Len(t, decls, 1)
	})

	mockAuthzService.AssertExpectations(t)
}
