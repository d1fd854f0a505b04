// Package profile manages the user-facing identity: display name, unique
// username, bio, avatar, and presence status.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"mingle/infrastructure"
	"mingle/internal/blob"
	"mingle/internal/database"
	"mingle/internal/realtime"
)

const maxBioLength = 200

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

type Service struct {
	db    *database.Database
	blobs *blob.Store
	feed  *realtime.Hub
}

func NewService(db *database.Database, blobs *blob.Store, feed *realtime.Hub) *Service {
	return &Service{db: db, blobs: blobs, feed: feed}
}

func (s *Service) Get(id uuid.UUID) (*database.Profile, error) {
	var profile database.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infrastructure.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "profile.Get")
	}
	return &profile, nil
}

type UpdateInput struct {
	Username    *string
	DisplayName *string
	Bio         *string
	PrivacyMode *bool
}

// Update mutates the caller's own profile. Usernames are stored lowercase so
// uniqueness is case-insensitive.
func (s *Service) Update(id uuid.UUID, input UpdateInput) (*database.Profile, error) {
	profile, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*input.Username))
		if !usernamePattern.MatchString(username) {
			return nil, infrastructure.ErrInvalidInput
		}
		updates["username"] = username
	}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, infrastructure.ErrInvalidInput
		}
		updates["display_name"] = name
	}
	if input.Bio != nil {
		if len(*input.Bio) > maxBioLength {
			return nil, infrastructure.ErrInvalidInput
		}
		updates["bio"] = *input.Bio
	}
	if input.PrivacyMode != nil {
		updates["privacy_mode"] = *input.PrivacyMode
	}
	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, infrastructure.ErrUsernameTaken
		}
		return nil, pkgerrors.Wrap(err, "profile.Update")
	}

	s.feed.Publish(realtime.Event{Table: "profiles", Recipients: []uuid.UUID{id}})
	return s.Get(id)
}

// UpdateAvatar stores the new image, swaps the profile reference, then removes
// the replaced object.
func (s *Service) UpdateAvatar(id uuid.UUID, data []byte, contentType, ext string) (*database.Profile, error) {
	profile, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%d%s", id, time.Now().UnixNano(), ext)
	stored, err := s.blobs.Upload(blob.BucketAvatars, path, data, contentType)
	if err != nil {
		return nil, err
	}

	oldURL := profile.AvatarURL
	url := s.blobs.PublicURL(blob.BucketAvatars, stored)
	if err := s.db.Model(profile).Update("avatar_url", url).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "profile.UpdateAvatar")
	}

	if oldPath := s.blobs.PathFromURL(blob.BucketAvatars, oldURL); oldPath != "" {
		_ = s.blobs.Remove(blob.BucketAvatars, oldPath)
	}

	s.feed.Publish(realtime.Event{Table: "profiles", Recipients: []uuid.UUID{id}})
	return s.Get(id)
}

// SetStatus records presence and refreshes last_seen.
func (s *Service) SetStatus(id uuid.UUID, status string) error {
	switch status {
	case database.StatusOnline, database.StatusOffline, database.StatusAway:
	default:
		return infrastructure.ErrInvalidInput
	}

	now := time.Now()
	err := s.db.Model(&database.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    status,
			"last_seen": now,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(err, "profile.SetStatus")
	}
	return nil
}
