package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

func newMock(t *testing.T) (BaseRepository, sqlmock.Sqlmock, *metrics.Metrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewBaseRepository(sqlx.NewDb(db, "postgres"), m), mock, m
}

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))
	assert.ErrorIs(t, wrapErr("get post", sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, wrapErr("create user", &pq.Error{Code: "23505"}), repository.ErrConflict)
	assert.ErrorIs(t, wrapErr("like comment", &pq.Error{Code: "23503"}), repository.ErrNotFound)

	err := wrapErr("list posts", errors.New("connection reset"))
	assert.EqualError(t, err, "failed to list posts: connection reset")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%summer%", likePattern("summer"))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
}

func TestBadgeAwardInsertsAndCounts(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewBadgeRepository(base)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO badges")).
		WithArgs(int64(3), "LIKE_20", "Likes 20", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE groups SET badge_count = badge_count + 1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	badge := &model.Badge{GroupID: 3, BadgeType: "LIKE_20", BadgeName: "Likes 20"}
	awarded, err := repo.Award(context.Background(), badge)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, int64(11), badge.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("badge_award", "success")))
}

func TestBadgeAwardSkipsExistingTier(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewBadgeRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO badges")).
		WithArgs(int64(3), "LIKE_20", "Likes 20", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	mock.ExpectCommit()

	awarded, err := repo.Award(context.Background(), &model.Badge{GroupID: 3, BadgeType: "LIKE_20", BadgeName: "Likes 20"})
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithNotificationRollsBackOnFailure(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewNotificationRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs("COMMENT_CREATED", "title", "hello", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(4, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(2), int64(4)).
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	msg := &model.Message{Type: model.MessageTypeCommentCreated, Title: "title", Content: "hello", PostID: 9}
	n, err := repo.CreateWithNotification(context.Background(), msg, 2)
	assert.Nil(t, n)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("notification_create", "error")))
}

func TestCreateWithNotification(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewNotificationRepository(base)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO messages")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(4, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(2), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(8, now))
	mock.ExpectCommit()

	msg := &model.Message{Type: model.MessageTypeReplyCreated, Title: "t", Content: "c", PostID: 9}
	n, err := repo.CreateWithNotification(context.Background(), msg, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n.ID)
	assert.Equal(t, int64(4), n.MessageID)
	assert.Equal(t, int64(4), msg.ID)
	assert.Same(t, msg, n.Message)
}

func TestRemoveMemberRejectsLastAdmin(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewGroupRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM group_members")).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("ADMIN"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM group_members")).
		WithArgs(int64(1), "ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectRollback()

	err := repo.RemoveMember(context.Background(), 1, 7)
	assert.ErrorIs(t, err, repository.ErrLastAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMemberNotMember(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewGroupRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM group_members")).
		WithArgs(int64(1), int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.RemoveMember(context.Background(), 1, 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIncrementGroupLikesMissingGroup(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewGroupRepository(base)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE groups SET group_like_count = group_like_count + 1")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementLikes(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestToggleScrap(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewScrapRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scraps")).
		WithArgs(int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraps")).
		WithArgs(int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	scrapped, err := repo.Toggle(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.True(t, scrapped)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scraps")).
		WithArgs(int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	scrapped, err = repo.Toggle(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.False(t, scrapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
