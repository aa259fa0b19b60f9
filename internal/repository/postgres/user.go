package postgres

import (
	"context"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (client_id, nickname, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	err := r.db.QueryRowxContext(ctx, query, user.ClientID, user.Nickname, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return wrapErr("create user", err)
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByClientID(ctx context.Context, clientID string) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE client_id = $1`, clientID); err != nil {
		return nil, wrapErr("get user by client id", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByClientID(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE client_id = $1)`, clientID)
	return exists, wrapErr("check client id", err)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET nickname = $1, password_hash = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Nickname, user.PasswordHash, user.ID).Scan(&user.UpdatedAt)
	return wrapErr("update user", err)
}
