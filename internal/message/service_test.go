package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/infrastructure"
	"mingle/internal/conversation"
	"mingle/internal/database"
	"mingle/internal/database/databasetest"
)

type fixture struct {
	db    *database.Database
	svc   *Service
	convs *conversation.Service
	alice uuid.UUID
	bob   uuid.UUID
	conv  uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.Open(t)
	convs := conversation.NewService(db, nil)
	svc := NewService(db, convs, nil)

	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	conv, err := convs.GetOrCreateDirect(alice, bob)
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, convs: convs, alice: alice, bob: bob, conv: conv.ID}
}

func seedProfile(t *testing.T, db *database.Database, name string) uuid.UUID {
	t.Helper()
	profile := &database.Profile{
		ID:          uuid.New(),
		DisplayName: name,
		Status:      database.StatusOffline,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile.ID
}

func TestSend(t *testing.T) {
	t.Run("text message", func(t *testing.T) {
		f := setup(t)
		msg, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Content:        "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, database.MessageText, msg.MessageType)
		assert.Nil(t, msg.EphemeralExpiresAt)
	})

	t.Run("text requires content", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Content:        "   ",
		})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})

	t.Run("file message requires an uploaded reference", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Type:           database.MessageFile,
		})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})

	t.Run("non-participant is refused", func(t *testing.T) {
		f := setup(t)
		mallory := seedProfile(t, f.db, "Mallory")
		_, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       mallory,
			Content:        "hi",
		})
		assert.ErrorIs(t, err, infrastructure.ErrNotParticipant)
	})

	t.Run("ephemeral image gets an expiry from the conversation settings", func(t *testing.T) {
		f := setup(t)
		msg, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Type:           database.MessageImage,
			FileURL:        "http://localhost/files/chat-files/x.png",
			FileName:       "x.png",
			FileSize:       123,
			Ephemeral:      true,
		})
		require.NoError(t, err)
		require.NotNil(t, msg.EphemeralExpiresAt)

		remaining := time.Until(*msg.EphemeralExpiresAt)
		assert.Greater(t, remaining, 14*time.Minute)
		assert.LessOrEqual(t, remaining, 15*time.Minute)
	})

	t.Run("ephemeral flag is ignored for text", func(t *testing.T) {
		f := setup(t)
		msg, err := f.svc.Send(SendInput{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Content:        "hello",
			Ephemeral:      true,
		})
		require.NoError(t, err)
		assert.Nil(t, msg.EphemeralExpiresAt)
	})
}

func TestEdit(t *testing.T) {
	sendAt := func(t *testing.T, f *fixture, age time.Duration) *database.Message {
		t.Helper()
		msg := &database.Message{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Content:        "original",
			MessageType:    database.MessageText,
			CreatedAt:      time.Now().Add(-age),
		}
		require.NoError(t, f.db.Create(msg).Error)
		return msg
	}

	t.Run("succeeds just inside the window", func(t *testing.T) {
		f := setup(t)
		msg := sendAt(t, f, 4*time.Minute+59*time.Second)

		require.NoError(t, f.svc.Edit(msg.ID, f.alice, "revised"))

		var got database.Message
		require.NoError(t, f.db.First(&got, "id = ?", msg.ID).Error)
		assert.Equal(t, "revised", got.Content)
		assert.True(t, got.IsEdited)
		assert.NotNil(t, got.EditedAt)
	})

	t.Run("fails just outside the window", func(t *testing.T) {
		f := setup(t)
		msg := sendAt(t, f, 5*time.Minute+1*time.Second)
		assert.ErrorIs(t, f.svc.Edit(msg.ID, f.alice, "revised"), infrastructure.ErrEditWindow)
	})

	t.Run("only the sender may edit", func(t *testing.T) {
		f := setup(t)
		msg := sendAt(t, f, time.Minute)
		assert.ErrorIs(t, f.svc.Edit(msg.ID, f.bob, "revised"), infrastructure.ErrNotSender)
	})

	t.Run("non-text messages are not editable", func(t *testing.T) {
		f := setup(t)
		msg := &database.Message{
			ConversationID: f.conv,
			SenderID:       f.alice,
			MessageType:    database.MessageImage,
			FileURL:        "http://localhost/files/chat-files/x.png",
		}
		require.NoError(t, f.db.Create(msg).Error)
		assert.ErrorIs(t, f.svc.Edit(msg.ID, f.alice, "revised"), infrastructure.ErrNotEditable)
	})

	t.Run("deleted messages are terminal", func(t *testing.T) {
		f := setup(t)
		msg := sendAt(t, f, time.Minute)
		require.NoError(t, f.svc.Delete(msg.ID, f.alice))
		assert.ErrorIs(t, f.svc.Edit(msg.ID, f.alice, "revised"), infrastructure.ErrMessageDeleted)
	})
}

func TestDelete(t *testing.T) {
	f := setup(t)

	msg, err := f.svc.Send(SendInput{
		ConversationID: f.conv,
		SenderID:       f.alice,
		Type:           database.MessageFile,
		FileURL:        "http://localhost/files/chat-files/doc.pdf",
		FileName:       "doc.pdf",
		FileSize:       2048,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(msg.ID, f.bob), infrastructure.ErrNotSender)

	require.NoError(t, f.svc.Delete(msg.ID, f.alice))
	// Repeat delete is a no-op.
	require.NoError(t, f.svc.Delete(msg.ID, f.alice))

	var got database.Message
	require.NoError(t, f.db.First(&got, "id = ?", msg.ID).Error)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, DeletedSentinel, got.Content)
	assert.Empty(t, got.FileURL)
	assert.Empty(t, got.FileName)

	// The row survives for ordering continuity and renders the sentinel.
	views, err := f.svc.List(f.conv, f.bob)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, DeletedSentinel, views[0].Content)
	assert.Empty(t, views[0].FileURL)
}

func TestToggleReaction(t *testing.T) {
	f := setup(t)

	msg, err := f.svc.Send(SendInput{
		ConversationID: f.conv,
		SenderID:       f.alice,
		Content:        "react to me",
	})
	require.NoError(t, err)

	countReactions := func() int64 {
		var count int64
		require.NoError(t, f.db.Model(&database.MessageReaction{}).
			Where("message_id = ?", msg.ID).Count(&count).Error)
		return count
	}

	require.NoError(t, f.svc.ToggleReaction(msg.ID, f.bob, "🔥"))
	assert.EqualValues(t, 1, countReactions())

	// Same emoji again removes it.
	require.NoError(t, f.svc.ToggleReaction(msg.ID, f.bob, "🔥"))
	assert.EqualValues(t, 0, countReactions())

	// Different users and emojis accumulate independently.
	require.NoError(t, f.svc.ToggleReaction(msg.ID, f.bob, "🔥"))
	require.NoError(t, f.svc.ToggleReaction(msg.ID, f.alice, "🔥"))
	require.NoError(t, f.svc.ToggleReaction(msg.ID, f.bob, "👍"))
	assert.EqualValues(t, 3, countReactions())

	views, err := f.svc.List(f.conv, f.alice)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Reactions, 2)
	assert.Equal(t, "🔥", views[0].Reactions[0].Emoji)
	assert.Len(t, views[0].Reactions[0].Users, 2)
	assert.Equal(t, "👍", views[0].Reactions[1].Emoji)
	assert.Len(t, views[0].Reactions[1].Users, 1)
}

func TestEphemeralRendering(t *testing.T) {
	f := setup(t)

	expires := time.Now().Add(time.Minute)
	msg := &database.Message{
		ConversationID:     f.conv,
		SenderID:           f.alice,
		MessageType:        database.MessageImage,
		FileURL:            "http://localhost/files/chat-files/secret.png",
		FileName:           "secret.png",
		EphemeralExpiresAt: &expires,
	}
	require.NoError(t, f.db.Create(msg).Error)

	t.Run("before expiry the payload is visible", func(t *testing.T) {
		views, err := f.svc.listAt(f.conv, f.bob, expires.Add(-time.Second))
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].Expired)
		assert.NotEmpty(t, views[0].FileURL)
	})

	t.Run("exactly at expiry the payload is suppressed", func(t *testing.T) {
		views, err := f.svc.listAt(f.conv, f.bob, expires)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.True(t, views[0].Expired)
		assert.Empty(t, views[0].FileURL)
		assert.Empty(t, views[0].Content)
	})

	t.Run("long after expiry it stays suppressed but the row persists", func(t *testing.T) {
		views, err := f.svc.listAt(f.conv, f.bob, expires.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.True(t, views[0].Expired)

		var count int64
		require.NoError(t, f.db.Model(&database.Message{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestListOrdering(t *testing.T) {
	f := setup(t)

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		msg := &database.Message{
			ConversationID: f.conv,
			SenderID:       f.alice,
			Content:        content,
			MessageType:    database.MessageText,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(msg).Error)
	}

	views, err := f.svc.List(f.conv, f.bob)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "first", views[0].Content)
	assert.Equal(t, "second", views[1].Content)
	assert.Equal(t, "third", views[2].Content)

	_, err = f.svc.List(f.conv, seedProfile(t, f.db, "Mallory"))
	assert.ErrorIs(t, err, infrastructure.ErrNotParticipant)
}
