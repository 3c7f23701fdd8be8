package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"gopkg.in/square/go-jose.v2/jwt"
)

type contextKey string

const userIDKey contextKey = "userID"

// the wallet address is taken from the first of these claims holding one
var userClaims = []string{"wallet", "sub", "oid"}

type JwtTokenParams struct {
	Issuer   string
	Audience string
}

// TokenValidator reads the bearer token set by the gateway. The signature is
// verified by the gateway, here only the claims are checked.
type TokenValidator struct {
	JwtTokenParams
	logger *zap.Logger
	now    func() time.Time
}

func NewTokenValidator(logger *zap.Logger, params JwtTokenParams) TokenValidator {
	return TokenValidator{logger: logger, JwtTokenParams: params, now: time.Now}
}

// UserID returns the user put in the context by the validator, or "".
func UserID(ctx context.Context) string {
	user, _ := ctx.Value(userIDKey).(string)
	return user
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func (t TokenValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			t.authError(w, errors.New("missing bearer token"))
			return
		}

		registered, claims, err := parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			t.authError(w, errors.New("failed to parse the auth token: "+err.Error()))
			return
		}

		if err := t.validateClaims(registered); err != nil {
			t.authError(w, errors.New("auth token validation: "+err.Error()))
			return
		}

		ctx := r.Context()
		for _, name := range userClaims {
			user, ok := claims[name].(string)
			if !ok || user == "" {
				continue
			}
			if !common.IsHexAddress(user) {
				t.logger.Debug("auth claim is not a wallet address", zap.String("claim", name))
				continue
			}
			ctx = WithUserID(ctx, user)
			break
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (t TokenValidator) authError(w http.ResponseWriter, err error) {
	t.logger.Warn(err.Error())
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(err.Error()))
}

func (t TokenValidator) validateClaims(claims jwt.Claims) error {
	expected := jwt.Expected{
		Issuer: t.Issuer,
		Time:   t.now(),
	}
	if t.Audience != "" {
		expected.Audience = jwt.Audience{t.Audience}
	}

	return claims.ValidateWithLeeway(expected, time.Minute)
}

func parseToken(tokenString string) (jwt.Claims, map[string]interface{}, error) {
	var (
		registered jwt.Claims
		claims     map[string]interface{}
	)

	token, err := jwt.ParseSigned(tokenString)
	if err != nil {
		return jwt.Claims{}, nil, err
	}

	if err := token.UnsafeClaimsWithoutVerification(&registered, &claims); err != nil {
		return jwt.Claims{}, nil, err
	}

	return registered, claims, nil
}
