package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orris-inc/licensor/internal/shared/biztime"
	apperrors "github.com/orris-inc/licensor/internal/shared/errors"
)

// RoleAdmin is the only role accepted by the admin API.
const RoleAdmin = "admin"

const tokenIssuer = "licensor"

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 admin bearer tokens.
type JWTService struct {
	secret     []byte
	expMinutes int
}

func NewJWTService(secret string, expMinutes int) *JWTService {
	if expMinutes <= 0 {
		expMinutes = 60
	}
	return &JWTService{
		secret:     []byte(secret),
		expMinutes: expMinutes,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *JWTService) Enabled() bool {
	return len(s.secret) > 0
}

// Issue signs an admin token for subject and returns it with its expiry.
func (s *JWTService) Issue(subject string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, fmt.Errorf("admin jwt secret is not configured")
	}

	now := biztime.NowUTC()
	exp := now.Add(time.Duration(s.expMinutes) * time.Minute)
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses tokenString and requires the admin role.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return nil, apperrors.NewTokenInvalidError("admin token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpiredError("admin token")
		}
		return nil, apperrors.NewTokenInvalidError("admin token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, apperrors.NewTokenInvalidError("admin token")
	}
	return claims, nil
}
