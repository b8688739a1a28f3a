package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/luestilo/estilo-backend/pkg/config"
	"github.com/luestilo/estilo-backend/pkg/enums"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintedToken bundles the signed string with the metadata the token store
// persists alongside it.
type MintedToken struct {
	Signed    string
	JTI       string
	Type      enums.TokenType
	ExpiresAt time.Time
}

// MintToken issues a signed JWT for the user with the provided type and TTL.
func MintToken(cfg config.JWTConfig, now time.Time, userID uuid.UUID, tokenType enums.TokenType, ttl time.Duration) (*MintedToken, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("jwt issuer is required")
	}
	if !tokenType.IsValid() {
		return nil, fmt.Errorf("invalid token type %q", tokenType)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	jti := uuid.NewString()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing jwt: %w", err)
	}

	return &MintedToken{
		Signed:    signed,
		JTI:       jti,
		Type:      tokenType,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseToken validates the JWT string (signature, expiry, issuer) and returns
// typed claims. It does not check the token type; callers assert that.
func ParseToken(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
