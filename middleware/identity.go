package middleware

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prevet-io/prevet/config"
	logger "github.com/prevet-io/prevet/logging"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
)

// IdentitySupplierKey is the gin context key holding the lazy identity
// supplier for the request.
const IdentitySupplierKey = "identitySupplier"

// Identity installs a lazy identity supplier on the request context. The
// bearer token is NOT parsed here: requests whose targets carry no policy
// never pay for token verification. The supplier parses on first use.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		c.Set(IdentitySupplierKey, pdp_model.IdentitySupplier(func() pdp_model.Identity {
			return identityFromHeader(header)
		}))
		c.Next()
	}
}

// SupplierFromContext returns the request's identity supplier, falling back
// to an anonymous supplier when the middleware did not run.
func SupplierFromContext(c *gin.Context) pdp_model.IdentitySupplier {
	if v, ok := c.Get(IdentitySupplierKey); ok {
		if supplier, ok := v.(pdp_model.IdentitySupplier); ok {
			return supplier
		}
	}
	return func() pdp_model.Identity { return pdp_model.Anonymous }
}

// identityFromHeader verifies the bearer token and maps its claims onto an
// identity. Any verification failure degrades to the anonymous identity; the
// policy expression decides what anonymous callers may do.
func identityFromHeader(header string) pdp_model.Identity {
	if !strings.HasPrefix(header, "Bearer ") {
		return pdp_model.Anonymous
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.GetString("auth.jwtSecret")), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("Rejected bearer token", zap.Error(err))
		return pdp_model.Anonymous
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return pdp_model.Anonymous
	}

	identity := pdp_model.Identity{
		Authenticated: true,
		Claims:        make(map[string]interface{}),
	}
	for key, value := range claims {
		switch key {
		case "sub":
			if subject, ok := value.(string); ok {
				identity.Subject = subject
			}
		case "roles":
			if roles, ok := value.([]interface{}); ok {
				for _, role := range roles {
					if r, ok := role.(string); ok {
						identity.Roles = append(identity.Roles, r)
					}
				}
			}
		default:
			identity.Claims[key] = value
		}
	}
	return identity
}
