package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"user-account-api/internal/core/auth"
	"user-account-api/internal/domain"
	resp "user-account-api/internal/transport/http/response"
)

const KeyClaims = "claims"

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthJWT requires "Authorization: Bearer <token>". A missing or malformed
// header is unauthenticated (401); a token that fails verification is an
// invalid credential (403). requireRole, when set, must match the token role.
func AuthJWT(j TokenParser, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			authFailures.WithLabelValues(string(domain.KindUnauthenticated)).Inc()
			resp.Fail(c, domain.Unauthenticated("Access denied. Token missing."))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			authFailures.WithLabelValues(string(domain.KindInvalidCredential)).Inc()
			resp.Fail(c, domain.InvalidCredential("Invalid or expired token."))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			authFailures.WithLabelValues(string(domain.KindUnauthorized)).Inc()
			resp.Fail(c, domain.Unauthorized("forbidden"))
			return
		}
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims AuthJWT stored on c.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok && cl != nil
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
