package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		client_id     VARCHAR(15) NOT NULL UNIQUE,
		nickname      VARCHAR(30) NOT NULL,
		password_hash TEXT NOT NULL,
		role          VARCHAR(10) NOT NULL DEFAULT 'USER',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id               BIGSERIAL PRIMARY KEY,
		name             VARCHAR(36) NOT NULL UNIQUE,
		password_hash    TEXT NOT NULL,
		is_public        BOOLEAN NOT NULL DEFAULT TRUE,
		introduction     VARCHAR(500) NOT NULL DEFAULT '',
		image_key        TEXT,
		group_like_count INTEGER NOT NULL DEFAULT 0,
		badge_count      INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		group_id  BIGINT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role      VARCHAR(10) NOT NULL DEFAULT 'MEMBER',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id            BIGSERIAL PRIMARY KEY,
		group_id      BIGINT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		author_id     BIGINT NOT NULL REFERENCES users(id),
		nickname      VARCHAR(30) NOT NULL,
		title         VARCHAR(100) NOT NULL,
		content       TEXT NOT NULL,
		image_url     TEXT,
		tags          TEXT[] NOT NULL DEFAULT '{}',
		location      VARCHAR(100),
		moment        TIMESTAMPTZ NOT NULL,
		is_public     BOOLEAN NOT NULL DEFAULT TRUE,
		like_count    INTEGER NOT NULL DEFAULT 0,
		comment_count INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_group_id ON posts(group_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGSERIAL PRIMARY KEY,
		post_id    BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		parent_id  BIGINT REFERENCES comments(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		nickname   VARCHAR(30) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	`CREATE TABLE IF NOT EXISTS comment_likes (
		id         BIGSERIAL PRIMARY KEY,
		comment_id BIGINT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (comment_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scraps (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		post_id    BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, post_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         BIGSERIAL PRIMARY KEY,
		type       VARCHAR(20) NOT NULL,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		post_id    BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS badges (
		id         BIGSERIAL PRIMARY KEY,
		group_id   BIGINT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		badge_type VARCHAR(20) NOT NULL,
		badge_name VARCHAR(50) NOT NULL,
		badge_image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (group_id, badge_type)
	)`,
	`ALTER TABLE badges ADD COLUMN IF NOT EXISTS badge_image_url TEXT`,
}

// Migrate creates any missing tables
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
