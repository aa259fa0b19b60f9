package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	"github.com/jwalitptl/memory-api/internal/service/live"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/event"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

type fakeUsers struct {
	repository.UserRepository
	users map[int64]*model.User
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakePosts struct {
	repository.PostRepository
	posts map[int64]*model.Post
}

func (f *fakePosts) Get(_ context.Context, id int64) (*model.Post, error) {
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

type fakeComments struct {
	repository.CommentRepository
	comments map[int64]*model.Comment
}

func (f *fakeComments) Get(_ context.Context, id int64) (*model.Comment, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type fakeNotifications struct {
	repository.NotificationRepository
	mu      sync.Mutex
	nextID  int64
	created []*model.Notification
	items   map[int64]*model.Notification
	err     error
}

func (f *fakeNotifications) CreateWithNotification(_ context.Context, msg *model.Message, userID int64) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	n := &model.Notification{ID: f.nextID, UserID: userID, MessageID: msg.ID, CreatedAt: msg.CreatedAt, Message: msg}
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifications) Get(_ context.Context, id int64) (*model.Notification, error) {
	if n, ok := f.items[id]; ok {
		return n, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeNotifications) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeNotifications) DeleteAllByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	svc      *Service
	bus      *event.Bus
	registry *live.Registry
	notifs   *fakeNotifications
	comments *fakeComments
	metrics  *metrics.Metrics
}

const (
	author    = int64(1)
	commenter = int64(2)
	postID    = int64(10)
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	registry := live.NewRegistry(4, nil, m)
	notifs := &fakeNotifications{items: map[int64]*model.Notification{}}
	comments := &fakeComments{comments: map[int64]*model.Comment{}}
	repos := Repositories{
		Users: &fakeUsers{users: map[int64]*model.User{
			author:    {ID: author, Nickname: "alice"},
			commenter: {ID: commenter, Nickname: "bob"},
		}},
		Posts: &fakePosts{posts: map[int64]*model.Post{
			postID: {ID: postID, AuthorID: author, Nickname: "alice-old"},
		}},
		Comments:      comments,
		Notifications: notifs,
	}

	svc := NewService(repos, registry, nil, m)
	bus := event.NewBus(nil, event.WithMetrics(m))
	svc.Register(bus)
	return &fixture{svc: svc, bus: bus, registry: registry, notifs: notifs, comments: comments, metrics: m}
}

func TestCommentOnOthersPostNotifiesAuthor(t *testing.T) {
	f := newFixture(t)
	ch := f.registry.Subscribe(author)

	f.bus.Emit(context.Background(), event.CommentCreated, event.CommentPayload{
		PostID: postID, CommenterID: commenter, Content: "nice",
	})
	f.bus.Wait()

	require.Len(t, f.notifs.created, 1)
	n := f.notifs.created[0]
	assert.Equal(t, author, n.UserID)
	assert.Equal(t, model.MessageTypeCommentCreated, n.Message.Type)
	assert.Equal(t, TitleCommentCreated, n.Message.Title)
	assert.Equal(t, "nice", n.Message.Content)

	select {
	case frame := <-ch.C:
		var got model.LiveMessage
		require.NoError(t, json.Unmarshal(frame, &got))
		assert.Equal(t, n.ID, got.NotificationID)
		assert.Equal(t, postID, got.PostID)
		assert.Equal(t, "alice", got.ReceiverName)
	default:
		t.Fatal("expected a live frame")
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.NotificationsCreated.WithLabelValues(string(model.MessageTypeCommentCreated))))
}

func TestCommentWithoutOpenChannelStillPersists(t *testing.T) {
	f := newFixture(t)

	f.bus.Emit(context.Background(), event.CommentCreated, &event.CommentPayload{
		PostID: postID, CommenterID: commenter, Content: "offline",
	})
	f.bus.Wait()

	assert.Len(t, f.notifs.created, 1)
}

func TestSelfCommentIsSuppressed(t *testing.T) {
	f := newFixture(t)

	f.bus.Emit(context.Background(), event.CommentCreated, event.CommentPayload{
		PostID: postID, CommenterID: author, Content: "me",
	})
	f.bus.Wait()

	assert.Empty(t, f.notifs.created)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.NotificationsSuppressed.WithLabelValues(reasonSelf)))
}

func TestCommentOnMissingPostIsDropped(t *testing.T) {
	f := newFixture(t)

	f.bus.Emit(context.Background(), event.CommentCreated, event.CommentPayload{
		PostID: 999, CommenterID: commenter,
	})
	f.bus.Wait()

	assert.Empty(t, f.notifs.created)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.NotificationsSuppressed.WithLabelValues(reasonPostMissing)))
}

func TestReplyNotifiesParentAuthor(t *testing.T) {
	f := newFixture(t)
	parentID := int64(50)
	f.comments.comments[parentID] = &model.Comment{ID: parentID, PostID: postID, UserID: commenter, Nickname: "bob"}
	ch := f.registry.Subscribe(commenter)

	f.bus.Emit(context.Background(), event.ReplyCreated, event.CommentPayload{
		PostID: postID, ParentID: &parentID, CommenterID: author, Content: "thanks",
	})
	f.bus.Wait()

	require.Len(t, f.notifs.created, 1)
	assert.Equal(t, commenter, f.notifs.created[0].UserID)
	assert.Equal(t, model.MessageTypeReplyCreated, f.notifs.created[0].Message.Type)
	assert.Equal(t, TitleReplyCreated, f.notifs.created[0].Message.Title)
	assert.Len(t, ch.C, 1)
}

func TestSelfReplyIsSuppressed(t *testing.T) {
	f := newFixture(t)
	parentID := int64(50)
	f.comments.comments[parentID] = &model.Comment{ID: parentID, PostID: postID, UserID: commenter}

	f.bus.Emit(context.Background(), event.ReplyCreated, event.CommentPayload{
		PostID: postID, ParentID: &parentID, CommenterID: commenter,
	})
	f.bus.Wait()

	assert.Empty(t, f.notifs.created)
}

func TestReplyToMissingParentIsDropped(t *testing.T) {
	f := newFixture(t)
	missing := int64(404)

	f.bus.Emit(context.Background(), event.ReplyCreated, event.CommentPayload{
		PostID: postID, ParentID: &missing, CommenterID: author,
	})
	f.bus.Wait()

	assert.Empty(t, f.notifs.created)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.NotificationsSuppressed.WithLabelValues(reasonParentMissing)))
}

func TestPersistFailureIsCountedAndSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifs.err = errors.New("db down")
	ch := f.registry.Subscribe(author)

	assert.NotPanics(t, func() {
		f.bus.Emit(context.Background(), event.CommentCreated, event.CommentPayload{PostID: postID, CommenterID: commenter})
		f.bus.Wait()
	})

	assert.Len(t, ch.C, 0)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.EventHandlerFailures.WithLabelValues(string(event.CommentCreated))))
}

func TestDeleteChecksOwnership(t *testing.T) {
	f := newFixture(t)
	f.notifs.items[7] = &model.Notification{ID: 7, UserID: author}

	err := f.svc.Delete(context.Background(), commenter, 7)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	err = f.svc.Delete(context.Background(), author, 8)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	require.NoError(t, f.svc.Delete(context.Background(), author, 7))
	assert.Empty(t, f.notifs.items)
}

func TestDeleteAllOnlyTouchesOwner(t *testing.T) {
	f := newFixture(t)
	f.notifs.items[1] = &model.Notification{ID: 1, UserID: author}
	f.notifs.items[2] = &model.Notification{ID: 2, UserID: author}
	f.notifs.items[3] = &model.Notification{ID: 3, UserID: commenter}

	n, err := f.svc.DeleteAll(context.Background(), author)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, f.notifs.items, 1)
}
