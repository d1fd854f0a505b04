// Package message implements the message lifecycle: send, a 5-minute edit
// window for text, soft delete behind a sentinel, ephemeral image expiry, and
// per-emoji reaction toggling.
package message

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"mingle/infrastructure"
	"mingle/internal/conversation"
	"mingle/internal/database"
	"mingle/internal/realtime"
)

const (
	EditWindow      = 5 * time.Minute
	DeletedSentinel = "[Message deleted]"

	defaultEphemeralDuration = 15 * time.Minute
)

type Service struct {
	db            *database.Database
	conversations *conversation.Service
	feed          *realtime.Hub
}

func NewService(db *database.Database, conversations *conversation.Service, feed *realtime.Hub) *Service {
	return &Service{db: db, conversations: conversations, feed: feed}
}

type SendInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	Type           string
	FileURL        string
	FileName       string
	FileSize       int64
	Ephemeral      bool
	ReplyToID      *uuid.UUID
}

func (s *Service) Send(input SendInput) (*database.Message, error) {
	if err := s.conversations.RequireParticipant(input.ConversationID, input.SenderID); err != nil {
		return nil, err
	}

	if input.Type == "" {
		input.Type = database.MessageText
	}
	switch input.Type {
	case database.MessageText, database.MessageSystem:
		if strings.TrimSpace(input.Content) == "" {
			return nil, infrastructure.ErrInvalidInput
		}
		input.FileURL, input.FileName, input.FileSize = "", "", 0
	case database.MessageImage, database.MessageFile:
		if input.FileURL == "" {
			return nil, infrastructure.ErrInvalidInput
		}
	default:
		return nil, infrastructure.ErrInvalidInput
	}

	msg := &database.Message{
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		Content:        input.Content,
		MessageType:    input.Type,
		FileURL:        input.FileURL,
		FileName:       input.FileName,
		FileSize:       input.FileSize,
		ReplyToID:      input.ReplyToID,
	}

	// Expiry is an image affordance only; text and file sends ignore the flag.
	if input.Ephemeral && input.Type == database.MessageImage {
		expires := time.Now().Add(s.ephemeralDuration(input.ConversationID))
		msg.EphemeralExpiresAt = &expires
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&database.Conversation{}).
			Where("id = ?", input.ConversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "message.Send")
	}

	s.publish(input.ConversationID)
	return msg, nil
}

// Edit rewrites a text message's content. Sender only, within EditWindow of
// creation, never after deletion.
func (s *Service) Edit(messageID, asUser uuid.UUID, content string) error {
	var msg database.Message
	if err := s.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		return infrastructure.ErrNotFound
	}
	if msg.SenderID != asUser {
		return infrastructure.ErrNotSender
	}
	if msg.IsDeleted {
		return infrastructure.ErrMessageDeleted
	}
	if msg.MessageType != database.MessageText {
		return infrastructure.ErrNotEditable
	}
	if time.Since(msg.CreatedAt) > EditWindow {
		return infrastructure.ErrEditWindow
	}
	if strings.TrimSpace(content) == "" {
		return infrastructure.ErrInvalidInput
	}

	now := time.Now()
	err := s.db.Model(&msg).Updates(map[string]interface{}{
		"content":   content,
		"is_edited": true,
		"edited_at": now,
	}).Error
	if err != nil {
		return pkgerrors.Wrap(err, "message.Edit")
	}

	s.publish(msg.ConversationID)
	return nil
}

// Delete soft-deletes: the row stays for ordering continuity, the content is
// replaced by the sentinel, and the file reference is never exposed again.
func (s *Service) Delete(messageID, asUser uuid.UUID) error {
	var msg database.Message
	if err := s.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		return infrastructure.ErrNotFound
	}
	if msg.SenderID != asUser {
		return infrastructure.ErrNotSender
	}
	if msg.IsDeleted {
		return nil
	}

	err := s.db.Model(&msg).Updates(map[string]interface{}{
		"is_deleted": true,
		"content":    DeletedSentinel,
		"file_url":   "",
		"file_name":  "",
		"file_size":  0,
	}).Error
	if err != nil {
		return pkgerrors.Wrap(err, "message.Delete")
	}

	s.publish(msg.ConversationID)
	return nil
}

// ToggleReaction inserts the (message, user, emoji) reaction, or removes it if
// it already exists.
func (s *Service) ToggleReaction(messageID, userID uuid.UUID, emoji string) error {
	if emoji == "" {
		return infrastructure.ErrInvalidInput
	}

	var msg database.Message
	if err := s.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		return infrastructure.ErrNotFound
	}
	if err := s.conversations.RequireParticipant(msg.ConversationID, userID); err != nil {
		return err
	}

	var existing database.MessageReaction
	err := s.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&existing).Error; err != nil {
			return pkgerrors.Wrap(err, "message.ToggleReaction.Delete")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := &database.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		}
		if err := s.db.Create(reaction).Error; err != nil {
			// A concurrent toggle already inserted it; the row exists, which
			// is this call's intent.
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.Wrap(err, "message.ToggleReaction.Create")
			}
		}
	default:
		return pkgerrors.Wrap(err, "message.ToggleReaction.First")
	}

	s.publish(msg.ConversationID)
	return nil
}

// ReactionGroup is one emoji with everyone who reacted with it.
type ReactionGroup struct {
	Emoji string             `json:"emoji"`
	Users []database.Profile `json:"users"`
}

// View is a message prepared for rendering: expired ephemeral payloads are
// already suppressed and reactions grouped.
type View struct {
	database.Message
	Sender    database.Profile `json:"sender"`
	Reactions []ReactionGroup  `json:"reactions"`
	Expired   bool             `json:"expired"`
}

func (s *Service) List(conversationID, viewer uuid.UUID) ([]View, error) {
	return s.listAt(conversationID, viewer, time.Now())
}

func (s *Service) listAt(conversationID, viewer uuid.UUID, now time.Time) ([]View, error) {
	if err := s.conversations.RequireParticipant(conversationID, viewer); err != nil {
		return nil, err
	}

	var msgs []database.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "message.List.Find")
	}

	profiles := make(map[uuid.UUID]database.Profile)
	views := make([]View, 0, len(msgs))
	for _, msg := range msgs {
		sender, ok := profiles[msg.SenderID]
		if !ok {
			if err := s.db.Where("id = ?", msg.SenderID).First(&sender).Error; err == nil {
				profiles[msg.SenderID] = sender
			}
		}

		groups, err := s.reactionGroups(msg.ID)
		if err != nil {
			return nil, err
		}

		view := View{Message: msg, Sender: sender, Reactions: groups}
		if Expired(&msg, now) {
			// The row persists; only the rendered payload is blanked.
			view.Expired = true
			view.Content = ""
			view.FileURL = ""
			view.FileName = ""
			view.FileSize = 0
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) reactionGroups(messageID uuid.UUID) ([]ReactionGroup, error) {
	var reactions []database.MessageReaction
	err := s.db.Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "message.reactionGroups")
	}
	if len(reactions) == 0 {
		return nil, nil
	}

	order := make([]string, 0)
	byEmoji := make(map[string][]database.Profile)
	for _, r := range reactions {
		if _, seen := byEmoji[r.Emoji]; !seen {
			order = append(order, r.Emoji)
		}
		var profile database.Profile
		if err := s.db.Where("id = ?", r.UserID).First(&profile).Error; err == nil {
			byEmoji[r.Emoji] = append(byEmoji[r.Emoji], profile)
		}
	}

	groups := make([]ReactionGroup, 0, len(order))
	for _, emoji := range order {
		groups = append(groups, ReactionGroup{Emoji: emoji, Users: byEmoji[emoji]})
	}
	return groups, nil
}

func (s *Service) ephemeralDuration(conversationID uuid.UUID) time.Duration {
	var settings database.ConversationSettings
	err := s.db.Where("conversation_id = ?", conversationID).First(&settings).Error
	if err != nil || settings.EphemeralDurationMinutes <= 0 {
		return defaultEphemeralDuration
	}
	return time.Duration(settings.EphemeralDurationMinutes) * time.Minute
}

func (s *Service) publish(conversationID uuid.UUID) {
	recipients, err := s.conversations.ParticipantIDs(conversationID)
	if err != nil {
		return
	}
	s.feed.Publish(realtime.Event{
		Table:          "messages",
		ConversationID: &conversationID,
		Recipients:     recipients,
	})
}
