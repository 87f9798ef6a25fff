package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumina-events/invitation-api/internal/api/handler/v1/response"
	"github.com/lumina-events/invitation-api/internal/pkg/jwthelper"
)

const claimsKey = "jwt_claims"

var (
	errMissingToken = errors.New("missing bearer token")
	errWrongRole    = errors.New("token does not grant access to this resource")
)

type Authenticator struct {
	key []byte
}

func NewAuthenticator(key string) *Authenticator {
	return &Authenticator{
		key: []byte(key),
	}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// parsed claims on the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// RequireRole must run after VerifyJWT.
func RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := Claims(ctx)
		if !ok || claims.Role != role {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("%w: role %s required", errWrongRole, role)))
			return
		}

		ctx.Next()
	}
}

func Claims(ctx *gin.Context) (*jwthelper.Claims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwthelper.Claims)

	return claims, ok
}
