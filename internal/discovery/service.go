// Package discovery implements the opt-in visibility filter over profiles.
package discovery

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"mingle/internal/database"
	"mingle/internal/friendship"
)

type Service struct {
	db      *database.Database
	friends *friendship.Service
}

func NewService(db *database.Database, friends *friendship.Service) *Service {
	return &Service{db: db, friends: friends}
}

// Result is a visible profile annotated with the viewer's relationship to it.
type Result struct {
	Profile          database.Profile `json:"profile"`
	FriendshipStatus string           `json:"friendship_status"`
}

// ListDiscoverable returns every profile except the viewer's, filtered to
// users who have not opted out. A missing settings row means visible.
func (s *Service) ListDiscoverable(viewer uuid.UUID, query string, onlineOnly bool) ([]Result, error) {
	var profiles []database.Profile
	if err := s.db.Where("id <> ?", viewer).Find(&profiles).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "discovery.ListDiscoverable.profiles")
	}

	var settings []database.DiscoverySetting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "discovery.ListDiscoverable.settings")
	}
	optedOut := make(map[uuid.UUID]bool, len(settings))
	for _, st := range settings {
		if !st.Discoverable {
			optedOut[st.UserID] = true
		}
	}

	statuses, err := s.friends.StatusesFor(viewer)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))

	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		if optedOut[p.ID] {
			continue
		}
		if onlineOnly && p.Status != database.StatusOnline {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}

		status := statuses[p.ID]
		if status == "" {
			status = friendship.StatusNone
		}
		results = append(results, Result{Profile: p, FriendshipStatus: status})
	}
	return results, nil
}

func matches(p database.Profile, query string) bool {
	if strings.Contains(strings.ToLower(p.DisplayName), query) {
		return true
	}
	return p.Username != nil && strings.Contains(strings.ToLower(*p.Username), query)
}

func (s *Service) Settings(userID uuid.UUID) (*database.DiscoverySetting, error) {
	var setting database.DiscoverySetting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent row defaults to discoverable.
			return &database.DiscoverySetting{UserID: userID, Discoverable: true}, nil
		}
		return nil, pkgerrors.Wrap(err, "discovery.Settings")
	}
	return &setting, nil
}

type SettingsInput struct {
	Discoverable    bool
	LocationSharing bool
	Interests       []string
}

func (s *Service) UpdateSettings(userID uuid.UUID, input SettingsInput) (*database.DiscoverySetting, error) {
	var setting database.DiscoverySetting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = database.DiscoverySetting{
			UserID:          userID,
			Discoverable:    input.Discoverable,
			LocationSharing: input.LocationSharing,
			Interests:       input.Interests,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, pkgerrors.Wrap(err, "discovery.UpdateSettings.Create")
		}
		return &setting, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "discovery.UpdateSettings.First")
	}

	setting.Discoverable = input.Discoverable
	setting.LocationSharing = input.LocationSharing
	setting.Interests = input.Interests
	// Select forces zero values (discoverable=false) through, and keeps the
	// serializer in play for interests.
	err = s.db.Model(&setting).
		Select("discoverable", "location_sharing", "interests").
		Updates(&setting).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "discovery.UpdateSettings.Updates")
	}
	return s.Settings(userID)
}
