// controller/authz_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prevet-io/prevet/catalog"
	prevet_errors "github.com/prevet-io/prevet/errors"
	"github.com/prevet-io/prevet/middleware"
	"github.com/prevet-io/prevet/service"
	"github.com/prevet-io/prevet/util"
)

type AuthzController struct {
	authzService service.IAuthzService
}

func NewAuthzController(authzService service.IAuthzService) *AuthzController {
	return &AuthzController{
		authzService: authzService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuthzController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/check", ac.Check)
	policies := r.Group("/policies")
	{
		policies.GET("", ac.ListDeclarations)
		policies.PUT("", ac.RegisterDeclaration)
	}
}

// Check endpoint: authorize one invocation
func (ac *AuthzController) Check(c *gin.Context) {
	var req service.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid check request", err)
		return
	}

	supplier := middleware.SupplierFromContext(c)
	resp, err := ac.authzService.Check(c, req, supplier)
	if err != nil {
		switch {
		case errors.Is(err, prevet_errors.ErrPolicyParse):
			util.RespondWithError(c, http.StatusInternalServerError, "Malformed policy declaration", err)
		case errors.Is(err, prevet_errors.ErrNonBooleanResult):
			util.RespondWithError(c, http.StatusInternalServerError, "Policy did not yield a boolean", err)
		case errors.Is(err, prevet_errors.ErrEvaluation):
			util.RespondWithError(c, http.StatusInternalServerError, "Policy evaluation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to check invocation", prevet_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListDeclarations endpoint
func (ac *AuthzController) ListDeclarations(c *gin.Context) {
	decls, err := ac.authzService.ListDeclarations(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list declarations", err)
		return
	}
	c.JSON(http.StatusOK, decls)
}

// RegisterDeclaration endpoint
func (ac *AuthzController) RegisterDeclaration(c *gin.Context) {
	var decl catalog.Declaration
	if err := c.ShouldBindJSON(&decl); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid declaration data", err)
		return
	}

	if err := ac.authzService.RegisterDeclaration(c, decl); err != nil {
		switch {
		case errors.Is(err, prevet_errors.ErrInvalidDeclaration):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid declaration", err)
		case errors.Is(err, prevet_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to register declaration", prevet_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, decl)
}
