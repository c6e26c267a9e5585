package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/httputil"
	"luckydraw/pkg/requestcontext"
)

// Claims are the token fields this engine consumes. The identity collaborator
// issues the tokens; the engine only verifies the signature and reads the
// subject and role.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator verifies bearer tokens. The HMAC implementation below is the
// default; tests substitute their own.
type JWTValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// HMACValidator validates HS256 tokens against a shared signing key.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated user ID and role into the context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "bearer token required"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			userID, err := id.ParseUserID(claims.Subject)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a valid user id"))
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates elevated operations on the role capability carried in
// the token. The engine never re-derives admin-ness from emails or any other
// identity attribute.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.Role(r.Context()) != "admin" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin capability required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
