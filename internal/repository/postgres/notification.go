package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

type notificationRow struct {
	model.Notification
	MsgType      model.MessageType `db:"msg_type"`
	MsgTitle     string            `db:"msg_title"`
	MsgContent   string            `db:"msg_content"`
	MsgPostID    int64             `db:"msg_post_id"`
	MsgCreatedAt time.Time         `db:"msg_created_at"`
}

func (row *notificationRow) toModel() *model.Notification {
	n := row.Notification
	n.Message = &model.Message{
		ID:        n.MessageID,
		Type:      row.MsgType,
		Title:     row.MsgTitle,
		Content:   row.MsgContent,
		PostID:    row.MsgPostID,
		CreatedAt: row.MsgCreatedAt,
	}
	return &n
}

const notificationSelect = `
	SELECT n.id, n.user_id, n.message_id, n.created_at,
		m.type AS msg_type, m.title AS msg_title, m.content AS msg_content,
		m.post_id AS msg_post_id, m.created_at AS msg_created_at
	FROM notifications n
	JOIN messages m ON m.id = n.message_id
`

func (r *notificationRepository) CreateWithNotification(ctx context.Context, msg *model.Message, userID int64) (n *model.Notification, err error) {
	defer func(start time.Time) { r.observe("notification_create", start, err) }(time.Now())

	n = &model.Notification{UserID: userID, Message: msg}
	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO messages (type, title, content, post_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			msg.Type, msg.Title, msg.Content, msg.PostID,
		).Scan(&msg.ID, &msg.CreatedAt)
		if err != nil {
			return wrapErr("create message", err)
		}

		n.MessageID = msg.ID
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO notifications (user_id, message_id)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			userID, msg.ID,
		).Scan(&n.ID, &n.CreatedAt)
		return wrapErr("create notification", err)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) Get(ctx context.Context, id int64) (*model.Notification, error) {
	var row notificationRow
	if err := r.db.GetContext(ctx, &row, notificationSelect+` WHERE n.id = $1`, id); err != nil {
		return nil, wrapErr("get notification", err)
	}
	return row.toModel(), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, page model.Pagination) ([]*model.Notification, int, error) {
	page = page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID); err != nil {
		return nil, 0, wrapErr("count notifications", err)
	}

	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows,
		notificationSelect+` WHERE n.user_id = $1 ORDER BY n.created_at DESC, n.id DESC LIMIT $2 OFFSET $3`,
		userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, wrapErr("list notifications", err)
	}

	out := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, total, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete notification", err)
	}
	return mustAffect("delete notification", res)
}

func (r *notificationRepository) DeleteAllByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, wrapErr("delete notifications", err)
	}
	n, err := res.RowsAffected()
	return n, wrapErr("delete notifications", err)
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (n int64, err error) {
	defer func(start time.Time) { r.observe("notification_cleanup", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < $1`, before)
	if err != nil {
		return 0, wrapErr("delete old notifications", err)
	}
	n, err = res.RowsAffected()
	return n, wrapErr("delete old notifications", err)
}
