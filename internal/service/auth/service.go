package auth

import (
	"context"
	"errors"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	"github.com/jwalitptl/memory-api/pkg/auth"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/security"
)

const TokenType = "Bearer"

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

// Login exchanges a client id and password for an access token
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByClientID(ctx, req.ClientID)
	if err != nil {
		return nil, repository.MapError(err, "user")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrMismatch) {
			return nil, apperrors.Unauthorized("invalid password")
		}
		return nil, apperrors.Internal(err)
	}

	token, err := s.jwtSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.jwtSvc.TTL().Seconds()),
	}, nil
}

// Authenticate verifies a bearer token and returns its claims
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
