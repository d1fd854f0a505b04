// Package friendship implements the directional friend-edge state machine.
// A pending request is one row owned by the sender; an accepted friendship is
// two rows, one per direction.
package friendship

import (
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mingle/infrastructure"
	"mingle/internal/database"
	"mingle/internal/realtime"
)

// Relationship of another profile to a viewer.
const (
	StatusNone            = "none"
	StatusPendingSent     = "pending_sent"
	StatusPendingReceived = "pending_received"
	StatusAccepted        = "accepted"
	StatusBlocked         = "blocked"
)

type Service struct {
	db   *database.Database
	feed *realtime.Hub
}

func NewService(db *database.Database, feed *realtime.Hub) *Service {
	return &Service{db: db, feed: feed}
}

// FriendView is an edge joined with the profile on the far side.
type FriendView struct {
	Edge    database.Friend
	Profile database.Profile
}

func (s *Service) SendRequest(from, to uuid.UUID) (*database.Friend, error) {
	if from == to {
		return nil, infrastructure.ErrSelfFriendship
	}

	var existing []database.Friend
	err := s.db.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", from, to, to, from).
		Find(&existing).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "friendship.SendRequest.Find")
	}
	for _, edge := range existing {
		switch edge.Status {
		case database.FriendBlocked:
			return nil, infrastructure.ErrBlocked
		case database.FriendAccepted:
			return nil, infrastructure.ErrAlreadyFriends
		default:
			return nil, infrastructure.ErrAlreadyRequested
		}
	}

	request := &database.Friend{
		UserID:   from,
		FriendID: to,
		Status:   database.FriendPending,
	}
	if err := s.db.Create(request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, infrastructure.ErrAlreadyRequested
		}
		return nil, pkgerrors.Wrap(err, "friendship.SendRequest.Create")
	}

	s.feed.Publish(realtime.Event{Table: "friends", Recipients: []uuid.UUID{from, to}})
	return request, nil
}

// Accept upgrades the pending row and inserts the reciprocal accepted edge.
// The reciprocal insert conflicts when the edge already exists, either from a
// retried accept or from a mutual pending request; both cases resolve to
// accepted, which makes Accept idempotent.
func (s *Service) Accept(requestID, asUser uuid.UUID) error {
	var request database.Friend
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		return infrastructure.ErrNotFound
	}
	if request.FriendID != asUser {
		return infrastructure.ErrForbidden
	}
	if request.Status == database.FriendAccepted {
		return nil
	}
	if request.Status != database.FriendPending {
		return infrastructure.ErrInvalidInput
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&request).Updates(map[string]interface{}{
			"status":     database.FriendAccepted,
			"updated_at": now,
		}).Error
		if err != nil {
			return err
		}

		reciprocal := &database.Friend{
			UserID:   request.FriendID,
			FriendID: request.UserID,
			Status:   database.FriendAccepted,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     database.FriendAccepted,
				"updated_at": now,
			}),
		}).Create(reciprocal).Error
	})
	if err != nil {
		return pkgerrors.Wrap(err, "friendship.Accept")
	}

	s.feed.Publish(realtime.Event{Table: "friends", Recipients: []uuid.UUID{request.UserID, request.FriendID}})
	return nil
}

// Decline removes a pending request. Either side may do it: the addressee
// declines, the sender cancels.
func (s *Service) Decline(requestID, asUser uuid.UUID) error {
	var request database.Friend
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		return infrastructure.ErrNotFound
	}
	if request.UserID != asUser && request.FriendID != asUser {
		return infrastructure.ErrForbidden
	}
	if request.Status != database.FriendPending {
		return infrastructure.ErrInvalidInput
	}

	if err := s.db.Delete(&request).Error; err != nil {
		return pkgerrors.Wrap(err, "friendship.Decline.Delete")
	}

	s.feed.Publish(realtime.Event{Table: "friends", Recipients: []uuid.UUID{request.UserID, request.FriendID}})
	return nil
}

// Remove deletes both directional rows. A single either-direction delete keeps
// the pair at none even if only one row existed.
func (s *Service) Remove(userID, friendID uuid.UUID) error {
	err := s.db.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&database.Friend{}).Error
	if err != nil {
		return pkgerrors.Wrap(err, "friendship.Remove.Delete")
	}

	s.feed.Publish(realtime.Event{Table: "friends", Recipients: []uuid.UUID{userID, friendID}})
	return nil
}

func (s *Service) ListFriends(userID uuid.UUID) ([]FriendView, error) {
	var edges []database.Friend
	err := s.db.
		Where("user_id = ? AND status = ?", userID, database.FriendAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "friendship.ListFriends.Find")
	}
	return s.expand(edges, func(e database.Friend) uuid.UUID { return e.FriendID })
}

// ListIncoming returns pending requests addressed to the user, with the
// sender's profile attached.
func (s *Service) ListIncoming(userID uuid.UUID) ([]FriendView, error) {
	var edges []database.Friend
	err := s.db.
		Where("friend_id = ? AND status = ?", userID, database.FriendPending).
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "friendship.ListIncoming.Find")
	}
	return s.expand(edges, func(e database.Friend) uuid.UUID { return e.UserID })
}

func (s *Service) ListOutgoing(userID uuid.UUID) ([]FriendView, error) {
	var edges []database.Friend
	err := s.db.
		Where("user_id = ? AND status = ?", userID, database.FriendPending).
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "friendship.ListOutgoing.Find")
	}
	return s.expand(edges, func(e database.Friend) uuid.UUID { return e.FriendID })
}

// StatusBetween reports the pair state as seen by the viewer.
func (s *Service) StatusBetween(viewer, other uuid.UUID) (string, error) {
	statuses, err := s.StatusesFor(viewer)
	if err != nil {
		return "", err
	}
	if st, ok := statuses[other]; ok {
		return st, nil
	}
	return StatusNone, nil
}

// StatusesFor scans every edge touching the viewer and maps the far-side user
// to a viewer-relative status.
func (s *Service) StatusesFor(viewer uuid.UUID) (map[uuid.UUID]string, error) {
	var edges []database.Friend
	err := s.db.
		Where("user_id = ? OR friend_id = ?", viewer, viewer).
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "friendship.StatusesFor.Find")
	}

	statuses := make(map[uuid.UUID]string, len(edges))
	for _, edge := range edges {
		other := edge.FriendID
		sent := true
		if edge.UserID != viewer {
			other = edge.UserID
			sent = false
		}

		switch edge.Status {
		case database.FriendAccepted:
			statuses[other] = StatusAccepted
		case database.FriendBlocked:
			statuses[other] = StatusBlocked
		case database.FriendPending:
			// Accepted or blocked from the other direction wins; with mutual
			// pendings, pending_received wins so the viewer is offered accept.
			switch statuses[other] {
			case StatusAccepted, StatusBlocked, StatusPendingReceived:
				continue
			}
			if sent {
				statuses[other] = StatusPendingSent
			} else {
				statuses[other] = StatusPendingReceived
			}
		}
	}
	return statuses, nil
}

func (s *Service) expand(edges []database.Friend, far func(database.Friend) uuid.UUID) ([]FriendView, error) {
	views := make([]FriendView, 0, len(edges))
	for _, edge := range edges {
		var profile database.Profile
		if err := s.db.Where("id = ?", far(edge)).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(err, "friendship.expand.Profile")
		}
		views = append(views, FriendView{Edge: edge, Profile: profile})
	}
	return views, nil
}
