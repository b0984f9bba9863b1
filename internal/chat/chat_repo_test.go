package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMembers map[string][]string

func (f fakeMembers) Members(_ context.Context, eventID string) ([]string, error) {
	m, ok := f[eventID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return m, nil
}

func TestCommunityChatMembershipAndMessages(t *testing.T) {
	db := storetest.Open(t, Models()...)
	repo := NewChatRepository(db, fakeMembers{})
	ctx := context.Background()

	room, err := repo.CreateCommunity(ctx, "alice", "Sunday runners", []string{"bob", "alice", ""})
	require.NoError(t, err)

	var members int64
	require.NoError(t, db.Model(&ChatMember{}).Where("chat_id = ?", room.ID).Count(&members).Error)
	assert.EqualValues(t, 2, members, "creator is added once, blanks skipped")

	ok, err := repo.IsMember(ctx, room, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsMember(ctx, room, "mallory")
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Now().UTC()
	require.NoError(t, repo.PostMessage(ctx, &ChatMessage{ChatID: room.ID, SenderID: "bob", Text: "second", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, repo.PostMessage(ctx, &ChatMessage{ChatID: room.ID, SenderID: "alice", Text: "first", Timestamp: base}))

	msgs, total, err := repo.Messages(ctx, room.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)

	got, err := repo.GetChat(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.LastMessage, "preview tracks the most recently posted message")

	err = repo.PostMessage(ctx, &ChatMessage{ChatID: "missing", SenderID: "bob", Text: "hi"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEventChatFollowsEventMembership(t *testing.T) {
	db := storetest.Open(t, Models()...)
	repo := NewChatRepository(db, fakeMembers{"ev1": {"host", "p1"}})
	ctx := context.Background()

	var room *CommunityChat
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = CreateEventChat(tx, "ev1", "host", "Pickup basketball")
		return err
	}))

	for user, want := range map[string]bool{"host": true, "p1": true, "p2": false} {
		ok, err := repo.IsMember(ctx, room, user)
		require.NoError(t, err)
		assert.Equal(t, want, ok, user)
	}

	chats, err := repo.ListForUser(ctx, "p1", []string{"ev1"})
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, room.ID, chats[0].ID)

	require.NoError(t, repo.PostMessage(ctx, &ChatMessage{ChatID: room.ID, SenderID: "p1", Text: "hi"}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeleteEventChat(tx, "ev1")
	}))

	_, err = repo.GetChat(ctx, room.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	var left int64
	require.NoError(t, db.Model(&ChatMessage{}).Count(&left).Error)
	assert.Zero(t, left)
}
