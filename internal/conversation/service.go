// Package conversation manages direct and group conversations, their
// participant sets, and per-participant read cursors.
package conversation

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"mingle/infrastructure"
	"mingle/internal/database"
	"mingle/internal/realtime"
)

type Service struct {
	db   *database.Database
	feed *realtime.Hub
}

func NewService(db *database.Database, feed *realtime.Hub) *Service {
	return &Service{db: db, feed: feed}
}

// View is a conversation joined with what a list page renders: the other
// participants, the newest message, and the viewer's unread count.
type View struct {
	Conversation database.Conversation
	Participants []database.Profile
	LastMessage  *database.Message
	UnreadCount  int64
}

// DirectKey orders the pair so both argument orders name the same conversation.
func DirectKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// GetOrCreateDirect returns the direct conversation between the two users,
// creating it on first use. The unique direct key makes concurrent calls
// converge on one row: the loser of the insert race re-reads the winner's.
func (s *Service) GetOrCreateDirect(userA, userB uuid.UUID) (*database.Conversation, error) {
	if userA == userB {
		return nil, infrastructure.ErrInvalidInput
	}

	key := DirectKey(userA, userB)

	var existing database.Conversation
	err := s.db.Where("direct_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(err, "conversation.GetOrCreateDirect.First")
	}

	conv := &database.Conversation{
		Type:      database.ConversationDirect,
		DirectKey: &key,
		CreatedBy: &userA,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, id := range []uuid.UUID{userA, userB} {
			participant := &database.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
				JoinedAt:       now,
				LastReadAt:     now,
			}
			if err := tx.Create(participant).Error; err != nil {
				return err
			}
		}
		settings := &database.ConversationSettings{ConversationID: conv.ID}
		return tx.Create(settings).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the other caller's conversation is the one.
			var winner database.Conversation
			if err := s.db.Where("direct_key = ?", key).First(&winner).Error; err != nil {
				return nil, pkgerrors.Wrap(err, "conversation.GetOrCreateDirect.refetch")
			}
			return &winner, nil
		}
		return nil, pkgerrors.Wrap(err, "conversation.GetOrCreateDirect.create")
	}

	s.feed.Publish(realtime.Event{
		Table:          "conversations",
		ConversationID: &conv.ID,
		Recipients:     []uuid.UUID{userA, userB},
	})
	return conv, nil
}

func (s *Service) CreateGroup(creator uuid.UUID, name string, memberIDs []uuid.UUID) (*database.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, infrastructure.ErrInvalidInput
	}

	members := map[uuid.UUID]bool{creator: true}
	for _, id := range memberIDs {
		members[id] = true
	}
	if len(members) < 2 {
		return nil, infrastructure.ErrInvalidInput
	}

	conv := &database.Conversation{
		Type:      database.ConversationGroup,
		Name:      name,
		CreatedBy: &creator,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		now := time.Now()
		for id := range members {
			participant := &database.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
				JoinedAt:       now,
				LastReadAt:     now,
			}
			if err := tx.Create(participant).Error; err != nil {
				return err
			}
		}
		settings := &database.ConversationSettings{ConversationID: conv.ID}
		return tx.Create(settings).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "conversation.CreateGroup")
	}

	recipients := make([]uuid.UUID, 0, len(members))
	for id := range members {
		recipients = append(recipients, id)
	}
	s.feed.Publish(realtime.Event{
		Table:          "conversations",
		ConversationID: &conv.ID,
		Recipients:     recipients,
	})
	return conv, nil
}

// Get returns a conversation with its participant profiles. Non-participants
// are refused; the caller is expected to redirect.
func (s *Service) Get(conversationID, viewer uuid.UUID) (*View, error) {
	if err := s.RequireParticipant(conversationID, viewer); err != nil {
		return nil, err
	}

	var conv database.Conversation
	if err := s.db.Where("id = ?", conversationID).First(&conv).Error; err != nil {
		return nil, infrastructure.ErrNotFound
	}

	profiles, err := s.participantProfiles(conversationID)
	if err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(conversationID, viewer)
	if err != nil {
		return nil, err
	}

	return &View{Conversation: conv, Participants: profiles, UnreadCount: unread}, nil
}

func (s *Service) ListForUser(userID uuid.UUID) ([]View, error) {
	var memberships []database.ConversationParticipant
	err := s.db.Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "conversation.ListForUser.memberships")
	}

	views := make([]View, 0, len(memberships))
	for _, m := range memberships {
		var conv database.Conversation
		if err := s.db.Where("id = ?", m.ConversationID).First(&conv).Error; err != nil {
			continue
		}

		profiles, err := s.participantProfiles(conv.ID)
		if err != nil {
			return nil, err
		}

		var last database.Message
		var lastPtr *database.Message
		err = s.db.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			lastPtr = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(err, "conversation.ListForUser.lastMessage")
		}

		unread, err := s.UnreadCount(conv.ID, userID)
		if err != nil {
			return nil, err
		}

		views = append(views, View{
			Conversation: conv,
			Participants: profiles,
			LastMessage:  lastPtr,
			UnreadCount:  unread,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Conversation.UpdatedAt.After(views[j].Conversation.UpdatedAt)
	})
	return views, nil
}

// MarkRead advances the viewer's read cursor to now, zeroing the unread count.
func (s *Service) MarkRead(conversationID, userID uuid.UUID) error {
	result := s.db.Model(&database.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", time.Now())
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "conversation.MarkRead")
	}
	if result.RowsAffected == 0 {
		return infrastructure.ErrNotParticipant
	}
	return nil
}

// UnreadCount derives the badge from the read cursor; nothing is persisted, so
// it cannot drift. Own messages never count.
func (s *Service) UnreadCount(conversationID, userID uuid.UUID) (int64, error) {
	var participant database.ConversationParticipant
	err := s.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&participant).Error
	if err != nil {
		return 0, infrastructure.ErrNotParticipant
	}

	var count int64
	err = s.db.Model(&database.Message{}).
		Where("conversation_id = ? AND created_at > ? AND sender_id <> ?",
			conversationID, participant.LastReadAt, userID).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(err, "conversation.UnreadCount")
	}
	return count, nil
}

func (s *Service) IsParticipant(conversationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&database.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "conversation.IsParticipant")
	}
	return count > 0, nil
}

func (s *Service) RequireParticipant(conversationID, userID uuid.UUID) error {
	ok, err := s.IsParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return infrastructure.ErrNotParticipant
	}
	return nil
}

// ParticipantIDs is used for change-feed fan-out.
func (s *Service) ParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error) {
	var participants []database.ConversationParticipant
	err := s.db.Where("conversation_id = ?", conversationID).Find(&participants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "conversation.ParticipantIDs")
	}
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

func (s *Service) Settings(conversationID, viewer uuid.UUID) (*database.ConversationSettings, error) {
	if err := s.RequireParticipant(conversationID, viewer); err != nil {
		return nil, err
	}

	var settings database.ConversationSettings
	err := s.db.Where("conversation_id = ?", conversationID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Older conversations may predate the settings row; defaults apply.
			return &database.ConversationSettings{
				ConversationID:           conversationID,
				EphemeralDurationMinutes: 15,
			}, nil
		}
		return nil, pkgerrors.Wrap(err, "conversation.Settings")
	}
	return &settings, nil
}

func (s *Service) UpdateSettings(conversationID, viewer uuid.UUID, ephemeralEnabled bool, durationMinutes int) error {
	if err := s.RequireParticipant(conversationID, viewer); err != nil {
		return err
	}
	if durationMinutes <= 0 {
		return infrastructure.ErrInvalidInput
	}

	var settings database.ConversationSettings
	err := s.db.Where("conversation_id = ?", conversationID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = database.ConversationSettings{
			ConversationID:           conversationID,
			EphemeralEnabled:         ephemeralEnabled,
			EphemeralDurationMinutes: durationMinutes,
		}
		return s.db.Create(&settings).Error
	}
	if err != nil {
		return pkgerrors.Wrap(err, "conversation.UpdateSettings")
	}

	return s.db.Model(&settings).Updates(map[string]interface{}{
		"ephemeral_enabled":          ephemeralEnabled,
		"ephemeral_duration_minutes": durationMinutes,
	}).Error
}

func (s *Service) participantProfiles(conversationID uuid.UUID) ([]database.Profile, error) {
	ids, err := s.ParticipantIDs(conversationID)
	if err != nil {
		return nil, err
	}
	var profiles []database.Profile
	if err := s.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "conversation.participantProfiles")
	}
	return profiles, nil
}
