package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MessageStore = (*MessageRepo)(nil)

// MessageRepo is the SQLite implementation of the MessageStore port.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a MessageRepo backed by the given DB.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Insert stores a sent message. The UNIQUE constraint on message_ts maps to
// driven.ErrDuplicateMessage so a repeated remote timestamp cannot produce
// two rows.
func (r *MessageRepo) Insert(ctx context.Context, msg model.SentMessage) (model.SentMessage, error) {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var threadTS any
	if msg.ThreadTS != nil {
		threadTS = *msg.ThreadTS
	}

	const query = `INSERT INTO messages (channel_id, channel_name, message_ts, text, thread_ts, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Writer.ExecContext(ctx, query,
		msg.ChannelID, msg.ChannelName, msg.MessageTS, msg.Text, threadTS, msg.UserID, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.SentMessage{}, fmt.Errorf("insert message %s: %w", msg.MessageTS, driven.ErrDuplicateMessage)
		}
		return model.SentMessage{}, fmt.Errorf("insert message %s: %w", msg.MessageTS, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.SentMessage{}, fmt.Errorf("last insert id: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = createdAt
	return msg, nil
}

// ListRecent returns up to limit stored messages, newest first.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]model.SentMessage, error) {
	const query = `SELECT id, channel_id, channel_name, message_ts, text, thread_ts, user_id, created_at
		FROM messages ORDER BY created_at DESC, id DESC LIMIT ?`

	return r.queryMessages(ctx, query, limit)
}

// ListByChannel returns up to limit stored messages for one channel, newest first.
func (r *MessageRepo) ListByChannel(ctx context.Context, channelID string, limit int) ([]model.SentMessage, error) {
	const query = `SELECT id, channel_id, channel_name, message_ts, text, thread_ts, user_id, created_at
		FROM messages WHERE channel_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`

	return r.queryMessages(ctx, query, channelID, limit)
}

// GetByTimestamp returns the stored message with the given remote timestamp,
// or nil, nil when none exists.
func (r *MessageRepo) GetByTimestamp(ctx context.Context, messageTS string) (*model.SentMessage, error) {
	const query = `SELECT id, channel_id, channel_name, message_ts, text, thread_ts, user_id, created_at
		FROM messages WHERE message_ts = ?`

	msg, err := scanMessage(r.db.Reader.QueryRowContext(ctx, query, messageTS))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageTS, err)
	}

	return msg, nil
}

// ListReplies returns the stored replies of a parent message. A message
// that is itself a thread reply has no replies of its own.
func (r *MessageRepo) ListReplies(ctx context.Context, parent model.SentMessage) ([]model.SentMessage, error) {
	if parent.IsThreadReply() {
		return []model.SentMessage{}, nil
	}

	const query = `SELECT id, channel_id, channel_name, message_ts, text, thread_ts, user_id, created_at
		FROM messages WHERE thread_ts = ? ORDER BY created_at DESC, id DESC`

	return r.queryMessages(ctx, query, parent.MessageTS)
}

func (r *MessageRepo) queryMessages(ctx context.Context, query string, args ...any) ([]model.SentMessage, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.SentMessage{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

func scanMessage(s scanner) (*model.SentMessage, error) {
	var msg model.SentMessage
	var threadTS sql.NullString
	var createdAt string

	err := s.Scan(&msg.ID, &msg.ChannelID, &msg.ChannelName, &msg.MessageTS, &msg.Text, &threadTS, &msg.UserID, &createdAt)
	if err != nil {
		return nil, err
	}

	if threadTS.Valid {
		ts := threadTS.String
		msg.ThreadTS = &ts
	}

	msg.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &msg, nil
}
