package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/security"
)

type fakeUsers struct {
	byID map[int64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	for _, u := range f.byID {
		if u.ClientID == user.ClientID {
			return repository.ErrConflict
		}
	}
	user.ID = int64(len(f.byID) + 1)
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByClientID(_ context.Context, clientID string) (*model.User, error) {
	for _, u := range f.byID {
		if u.ClientID == clientID {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) ExistsByClientID(ctx context.Context, clientID string) (bool, error) {
	_, err := f.GetByClientID(ctx, clientID)
	return err == nil, nil
}

func (f *fakeUsers) Update(_ context.Context, user *model.User) error {
	f.byID[user.ID] = user
	return nil
}

func TestRegisterHashesPassword(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(newFakeUsers(), hasher)

	u, err := svc.Register(context.Background(), &model.CreateUserRequest{ClientID: "alice01", Password: "password1", Nickname: " alice "})
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Nickname)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotEqual(t, "password1", u.PasswordHash)
	assert.NoError(t, hasher.Compare(u.PasswordHash, "password1"))
}

func TestRegisterDuplicateClientID(t *testing.T) {
	svc := NewService(newFakeUsers(), security.NewBcryptHasher(bcrypt.MinCost))
	req := &model.CreateUserRequest{ClientID: "alice01", Password: "password1", Nickname: "a"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	assert.True(t, apperrors.Is(svc.CheckClientID(context.Background(), "alice01"), apperrors.KindConflict))
	assert.NoError(t, svc.CheckClientID(context.Background(), "bob0001"))
	assert.True(t, apperrors.Is(svc.CheckClientID(context.Background(), ""), apperrors.KindValidation))
}

func TestUpdate(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(newFakeUsers(), hasher)
	u, err := svc.Register(context.Background(), &model.CreateUserRequest{ClientID: "alice01", Password: "password1", Nickname: "alice"})
	require.NoError(t, err)

	nick, pass := "alicia", "password2"
	updated, err := svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{Nickname: &nick, Password: &pass})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Nickname)
	assert.NoError(t, hasher.Compare(updated.PasswordHash, "password2"))

	_, err = svc.Update(context.Background(), 99, &model.UpdateUserRequest{Nickname: &nick})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
