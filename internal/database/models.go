package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
	FriendBlocked  = "blocked"
)

const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageFile   = "file"
	MessageSystem = "system"
)

// User is the auth-provider side of an identity. The Profile row shares its ID.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     []byte    `gorm:"not null"`
	Verified         bool      `gorm:"not null;default:false"`
	VerificationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	Token     string    `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username    *string   `gorm:"uniqueIndex"`
	DisplayName string    `gorm:"not null"`
	Bio         string
	AvatarURL   string
	Status      string `gorm:"not null;default:offline"`
	LastSeen    *time.Time
	PrivacyMode bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Friend is a directional edge. An accepted friendship is two rows, one per
// direction; a pending request is a single row owned by the sender.
type Friend struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair"`
	FriendID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair"`
	Status    string    `gorm:"not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Friend) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type Conversation struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type string    `gorm:"not null;default:direct"`
	Name string
	// DirectKey is the ordered participant pair of a direct conversation. The
	// unique index is what makes find-or-create race-free.
	DirectKey *string    `gorm:"uniqueIndex"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ConversationParticipant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_member"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_member"`
	JoinedAt       time.Time `gorm:"not null"`
	LastReadAt     time.Time `gorm:"not null"`
}

func (p *ConversationParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ConversationSettings struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EphemeralEnabled         bool      `gorm:"not null;default:false"`
	EphemeralDurationMinutes int       `gorm:"not null;default:15"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (s *ConversationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Message struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID     uuid.UUID `gorm:"type:uuid;not null;index:idx_message_conversation"`
	SenderID           uuid.UUID `gorm:"type:uuid;not null"`
	Content            string
	MessageType        string `gorm:"not null;default:text"`
	FileURL            string
	FileName           string
	FileSize           int64
	EphemeralExpiresAt *time.Time
	ReplyToID          *uuid.UUID `gorm:"type:uuid"`
	IsEdited           bool       `gorm:"not null;default:false"`
	EditedAt           *time.Time
	IsDeleted          bool `gorm:"not null;default:false"`
	CreatedAt          time.Time `gorm:"index:idx_message_conversation"`
	UpdatedAt          time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type MessageReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once"`
	Emoji     string    `gorm:"not null;uniqueIndex:idx_reaction_once"`
	CreatedAt time.Time
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type DiscoverySetting struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Discoverable    bool      `gorm:"not null;default:true"`
	LocationSharing bool      `gorm:"not null;default:false"`
	Interests       []string  `gorm:"serializer:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *DiscoverySetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
