package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Claims carried in access tokens
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an issued access token
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// JWTService issues and verifies access tokens
type JWTService interface {
	Generate(userID int64, role string) (*Token, error)
	Verify(token string) (*Claims, error)
	TTL() time.Duration
}

type jwtService struct {
	secret []byte
	ttl    time.Duration
	cache  *cache.Cache
	now    func() time.Time
}

// NewJWTService creates an HS256 token service. Verified claims are cached
// until the token expires.
func NewJWTService(secret string, ttl time.Duration) JWTService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		cache:  cache.New(ttl, 10*time.Minute),
		now:    time.Now,
	}
}

func (s *jwtService) Generate(userID int64, role string) (*Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: exp}, nil
}

func (s *jwtService) TTL() time.Duration {
	return s.ttl
}

func (s *jwtService) Verify(token string) (*Claims, error) {
	if cached, ok := s.cache.Get(token); ok {
		claims := cached.(*Claims)
		if claims.ExpiresAt != nil && s.now().Before(claims.ExpiresAt.Time) {
			return claims, nil
		}
		s.cache.Delete(token)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			s.cache.Set(token, claims, remaining)
		}
	}
	return claims, nil
}
