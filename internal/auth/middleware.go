package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/apperr"
	"bookshelf/internal/respond"
)

const CtxClaimsKey = "auth_claims"

// AuthMiddleware rejects requests without a valid bearer token and stores
// the claims on the context.
func AuthMiddleware(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, tokens)
		if err != nil {
			respond.Fail(c, err)
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func bearerClaims(c *gin.Context, tokens TokenService) (*Claims, error) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil, apperr.Auth("No token provided")
	}

	raw := strings.TrimSpace(h[len("Bearer "):])
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, apperr.Auth("Invalid token")
	}
	return claims, nil
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
