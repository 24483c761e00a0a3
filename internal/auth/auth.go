package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/identity"
)

var (
	ErrMissingToken = errors.New("missing credential token")
	ErrInvalidToken = errors.New("invalid credential token")
	ErrUnknownRole  = errors.New("unknown role in credential")
)

// Claims are the authorization claims the portal's REST layer signs into a
// token. The notifier only ever verifies them.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

// Authenticator verifies handshake credentials with the same HMAC secret and
// algorithm the portal's REST middleware signs them with.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		logger: logger,
	}
}

// Verify validates the token's signature and expiry and extracts the
// Identity it carries. Any failure means the connection is refused before it
// is admitted anywhere.
func (a *Authenticator) Verify(token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		a.logger.Debug("credential rejected", zap.Error(err))
		return identity.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return identity.Identity{}, ErrInvalidToken
	}

	role := identity.Role(claims.Role)
	if !role.Valid() {
		a.logger.Debug("credential rejected", zap.String("role", claims.Role))
		return identity.Identity{}, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}

	return identity.Identity{
		ID:          claims.Subject,
		Role:        role,
		DisplayName: claims.Name,
	}, nil
}

// TokenFromRequest extracts the handshake credential from the configured
// header, or from the "token" query parameter as a fallback for browser
// WebSocket clients that cannot set custom headers.
func TokenFromRequest(r *http.Request, headerName string) string {
	if token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(headerName), "Bearer")); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}
