package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/prevet-io/prevet/logging"
	"github.com/prevet-io/prevet/middleware"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "prevet-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)
	gin.SetMode(gin.TestMode)
	viper.Set("auth.jwtSecret", testSecret)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type probeResponse struct {
	Subject       string   `json:"subject"`
	Authenticated bool     `json:"authenticated"`
	Roles         []string `json:"roles"`
	SupplierUsed  bool     `json:"supplier_used"`
}

func setupProbe(resolve bool) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Identity())
	r.GET("/probe", func(c *gin.Context) {
		resp := probeResponse{}
		if resolve {
			identity := middleware.SupplierFromContext(c)()
			resp = probeResponse{
				Subject:       identity.Subject,
				Authenticated: identity.Authenticated,
				Roles:         identity.Roles,
				SupplierUsed:  true,
			}
		}
		c.JSON(http.StatusOK, resp)
	})
	return r
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func probe(t *testing.T, router *gin.Engine, authorization string) probeResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp probeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIdentityFromBearerToken(t *testing.T) {
	router := setupProbe(true)
	token := signToken(t, jwt.MapClaims{
		"sub":   "alice",
		"roles": []string{"ADMIN", "SUPPORT"},
	})

	resp := probe(t, router, "Bearer "+token)
	assert.Equal(t, "alice", resp.Subject)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, []string{"ADMIN", "SUPPORT"}, resp.Roles)
}

func TestIdentityAnonymousWithoutToken(t *testing.T) {
	router := setupProbe(true)

	resp := probe(t, router, "")
	assert.Equal(t, "anonymous", resp.Subject)
	assert.False(t, resp.Authenticated)
}

func TestIdentityAnonymousOnBadToken(t *testing.T) {
	router := setupProbe(true)

	resp := probe(t, router, "Bearer not-a-token")
	assert.Equal(t, "anonymous", resp.Subject)
	assert.False(t, resp.Authenticated)
}

func TestIdentitySupplierIsLazy(t *testing.T) {
	// A garbage token never causes an error when the handler does not
	// resolve the identity: parsing only happens inside the supplier.
	router := setupProbe(false)

	resp := probe(t, router, "Bearer not-a-token")
	assert.False(t, resp.SupplierUsed)
}
