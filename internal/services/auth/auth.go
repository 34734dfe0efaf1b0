package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims represents the JWT claims this service cares about. Token
// issuance belongs to the external auth collaborator; this service
// only verifies and extracts the user identity.
type Claims struct {
	Sub string `json:"sub"` // User ID

	jwt.RegisteredClaims
}

// Service validates bearer tokens signed with a shared HMAC secret
type Service struct {
	secret         []byte
	devAuthEnabled bool
	devAuthToken   string
	devAuthUserID  string
}

// NewService creates a new auth service
func NewService(jwtSecret string) (*Service, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &Service{
		secret: []byte(jwtSecret),
	}, nil
}

// SetDevAuth configures development authentication bypass: the given
// static token authenticates as the given user id.
func (s *Service) SetDevAuth(enabled bool, token, userID string) {
	s.devAuthEnabled = enabled
	s.devAuthToken = token
	s.devAuthUserID = userID
}

// ValidateToken verifies the token signature and expiry and returns
// the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if s.devAuthEnabled && s.devAuthToken != "" {
		if subtle.ConstantTimeCompare([]byte(tokenString), []byte(s.devAuthToken)) == 1 {
			return &Claims{Sub: s.devAuthUserID}, nil
		}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Sub == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
