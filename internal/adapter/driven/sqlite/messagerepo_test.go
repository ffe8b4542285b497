package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

func strPtr(s string) *string { return &s }

func TestMessageRepo_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, model.SentMessage{
		ChannelID:   "C123456789",
		ChannelName: "#general",
		MessageTS:   "1234567890.123456",
		Text:        "Test message",
		UserID:      "U999999999",
	})
	require.NoError(t, err)
	assert.NotZero(t, inserted.ID)
	assert.False(t, inserted.CreatedAt.IsZero())

	got, err := repo.GetByTimestamp(ctx, "1234567890.123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "C123456789", got.ChannelID)
	assert.Equal(t, "#general", got.ChannelName)
	assert.Equal(t, "Test message", got.Text)
	assert.Equal(t, "U999999999", got.UserID)
	assert.Nil(t, got.ThreadTS)
	assert.False(t, got.IsThreadReply())
}

func TestMessageRepo_DuplicateTimestampRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	msg := model.SentMessage{
		ChannelID:   "C123456789",
		ChannelName: "#general",
		MessageTS:   "1234567890.123456",
		Text:        "first",
		UserID:      "U1",
	}

	_, err := repo.Insert(ctx, msg)
	require.NoError(t, err)

	msg.Text = "second"
	_, err = repo.Insert(ctx, msg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrDuplicateMessage))

	// The original row is untouched.
	got, err := repo.GetByTimestamp(ctx, "1234567890.123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Text)
}

func TestMessageRepo_GetByTimestampMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)

	got, err := repo.GetByTimestamp(context.Background(), "0.0")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMessageRepo_ListRecentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, model.SentMessage{
			ChannelID:   "C1",
			ChannelName: "#general",
			MessageTS:   fmt.Sprintf("100000000%d.000000", i),
			Text:        fmt.Sprintf("message %d", i),
			UserID:      "U1",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	msgs, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "message 4", msgs[0].Text)
	assert.Equal(t, "message 3", msgs[1].Text)
	assert.Equal(t, "message 2", msgs[2].Text)
}

func TestMessageRepo_ListByChannel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	_, err := repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "1.1", Text: "in general", UserID: "U1",
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, model.SentMessage{
		ChannelID: "C2", ChannelName: "#random", MessageTS: "2.2", Text: "in random", UserID: "U1",
	})
	require.NoError(t, err)

	msgs, err := repo.ListByChannel(ctx, "C1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "in general", msgs[0].Text)
}

func TestMessageRepo_ListReplies(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	parent, err := repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "1000.0001", Text: "parent", UserID: "U1",
	})
	require.NoError(t, err)

	reply1, err := repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "1000.0002",
		Text: "reply one", ThreadTS: strPtr("1000.0001"), UserID: "U2",
	})
	require.NoError(t, err)
	assert.True(t, reply1.IsThreadReply())

	_, err = repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "1000.0003",
		Text: "reply two", ThreadTS: strPtr("1000.0001"), UserID: "U3",
	})
	require.NoError(t, err)

	// Unrelated top-level message must not appear.
	_, err = repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "2000.0001", Text: "other", UserID: "U1",
	})
	require.NoError(t, err)

	replies, err := repo.ListReplies(ctx, parent)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	for _, reply := range replies {
		require.NotNil(t, reply.ThreadTS)
		assert.Equal(t, parent.MessageTS, *reply.ThreadTS)
	}
}

func TestMessageRepo_ListRepliesOfReplyIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	reply, err := repo.Insert(ctx, model.SentMessage{
		ChannelID: "C1", ChannelName: "#general", MessageTS: "1000.0002",
		Text: "a reply", ThreadTS: strPtr("1000.0001"), UserID: "U2",
	})
	require.NoError(t, err)

	replies, err := repo.ListReplies(ctx, reply)
	require.NoError(t, err)
	assert.Empty(t, replies)
}
