package user

import (
	"context"
	"strings"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/security"
)

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register creates an account. A taken client id is a conflict.
func (s *Service) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		ClientID:     req.ClientID,
		Nickname:     strings.TrimSpace(req.Nickname),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, repository.MapError(err, "user")
	}
	return user, nil
}

// CheckClientID fails with a conflict when clientID is already registered
func (s *Service) CheckClientID(ctx context.Context, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return apperrors.Validation("client-id is required", nil)
	}
	exists, err := s.repo.ExistsByClientID(ctx, clientID)
	if err != nil {
		return repository.MapError(err, "user")
	}
	if exists {
		return apperrors.Conflict("client id already in use", nil)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "user")
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		user.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, repository.MapError(err, "user")
	}
	return user, nil
}
