package post

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

type fakePosts struct {
	repository.PostRepository
	posts map[int64]*model.Post
}

func (f *fakePosts) Create(_ context.Context, p *model.Post) error {
	p.ID = int64(len(f.posts) + 1)
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) Get(_ context.Context, id int64) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) Update(_ context.Context, p *model.Post) error {
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) IncrementLikes(_ context.Context, id int64) (int64, error) {
	p, ok := f.posts[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	p.LikeCount++
	return p.GroupID, nil
}

type fakeGroups struct {
	repository.GroupRepository
	members map[int64]map[int64]bool
}

func (f *fakeGroups) Get(_ context.Context, id int64) (*model.Group, error) {
	if _, ok := f.members[id]; !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Group{ID: id}, nil
}

func (f *fakeGroups) GetMember(_ context.Context, groupID, userID int64) (*model.GroupMember, error) {
	if !f.members[groupID][userID] {
		return nil, repository.ErrNotFound
	}
	return &model.GroupMember{GroupID: groupID, UserID: userID, Role: model.MemberRoleMember}, nil
}

type fakeUsers struct {
	repository.UserRepository
}

func (fakeUsers) Get(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Nickname: "alice"}, nil
}

type fakeEvaluator struct {
	calls []int64
}

func (f *fakeEvaluator) Evaluate(_ context.Context, groupID int64) ([]*model.Badge, error) {
	f.calls = append(f.calls, groupID)
	return nil, nil
}

func (f *fakeEvaluator) List(context.Context, int64) ([]*model.Badge, error) { return nil, nil }

func newService() (*Service, *fakePosts, *fakeEvaluator) {
	posts := &fakePosts{posts: map[int64]*model.Post{}}
	groups := &fakeGroups{members: map[int64]map[int64]bool{5: {1: true}}}
	eval := &fakeEvaluator{}
	return NewService(posts, groups, fakeUsers{}, eval), posts, eval
}

func createReq() *model.CreatePostRequest {
	return &model.CreatePostRequest{
		Title:   " trip ",
		Content: "we went to the sea",
		Tags:    []string{"sea", " sea", "", "summer"},
		Moment:  model.Date{Time: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestCreate(t *testing.T) {
	svc, _, _ := newService()

	p, err := svc.Create(context.Background(), 1, 5, createReq())
	require.NoError(t, err)
	assert.Equal(t, "trip", p.Title)
	assert.Equal(t, "alice", p.Nickname)
	assert.Equal(t, []string{"sea", "summer"}, []string(p.Tags))
	assert.Equal(t, int64(1), p.AuthorID)
}

func TestCreateRequiresMembershipAndMoment(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Create(context.Background(), 2, 5, createReq())
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = svc.Create(context.Background(), 1, 99, createReq())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	req := createReq()
	req.Moment = model.Date{}
	_, err = svc.Create(context.Background(), 1, 5, req)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateAndDeleteAuthorOnly(t *testing.T) {
	svc, posts, _ := newService()
	p, err := svc.Create(context.Background(), 1, 5, createReq())
	require.NoError(t, err)

	title := "renamed"
	_, err = svc.Update(context.Background(), 2, p.ID, &model.UpdatePostRequest{Title: &title})
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	updated, err := svc.Update(context.Background(), 1, p.ID, &model.UpdatePostRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "we went to the sea", updated.Content)

	assert.True(t, apperrors.Is(svc.Delete(context.Background(), 2, p.ID), apperrors.KindForbidden))
	require.NoError(t, svc.Delete(context.Background(), 1, p.ID))
	assert.Empty(t, posts.posts)
}

func TestLikeEvaluatesPostGroup(t *testing.T) {
	svc, posts, eval := newService()
	p, err := svc.Create(context.Background(), 1, 5, createReq())
	require.NoError(t, err)

	require.NoError(t, svc.Like(context.Background(), p.ID))
	assert.Equal(t, 1, posts.posts[p.ID].LikeCount)
	assert.Equal(t, []int64{5}, eval.calls)

	assert.True(t, apperrors.Is(svc.Like(context.Background(), 100), apperrors.KindNotFound))
}
