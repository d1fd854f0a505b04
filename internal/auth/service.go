package auth

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mingle/infrastructure"
	"mingle/internal/database"
	"mingle/pkg/jwt"
)

const minPasswordEntropy = 60

// Mailer delivers account emails. Satisfied by email.Sender.
type Mailer interface {
	SendVerificationEmail(to, displayName, code string) error
}

type Service struct {
	db     *database.Database
	tokens *jwt.JWT
	mailer Mailer
}

func NewService(db *database.Database, tokens *jwt.JWT, mailer Mailer) *Service {
	return &Service{db: db, tokens: tokens, mailer: mailer}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *Service) Register(input RegisterInput) (*database.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, infrastructure.ErrInvalidInput
	}
	if input.DisplayName == "" {
		return nil, infrastructure.ErrInvalidInput
	}
	if err := passwordvalidator.Validate(input.Password, minPasswordEntropy); err != nil {
		return nil, infrastructure.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		Email:            input.Email,
		PasswordHash:     hash,
		VerificationCode: infrastructure.GenerateVerificationCode(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &database.Profile{
			ID:          user.ID,
			DisplayName: input.DisplayName,
			Status:      database.StatusOffline,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, infrastructure.ErrUserAlreadyExists
		}
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(user.Email, input.DisplayName, user.VerificationCode); err != nil {
			slog.Error("send verification email", "err", err)
		}
	}

	return user, nil
}

func (s *Service) VerifyEmail(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var user database.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return infrastructure.ErrUserNotFound
	}
	if user.Verified {
		return nil
	}
	if code == "" || user.VerificationCode != code {
		return infrastructure.ErrInvalidInput
	}

	return s.db.Model(&user).Updates(map[string]interface{}{
		"verified":          true,
		"verification_code": "",
	}).Error
}

func (s *Service) Login(email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user database.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, infrastructure.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, infrastructure.ErrUnauthorized
	}
	if !user.Verified {
		return nil, infrastructure.ErrEmailNotVerified
	}

	return s.issuePair(user.ID)
}

func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	var stored database.RefreshToken
	err := s.db.Where("token = ? AND revoked = ?", refreshToken, false).First(&stored).Error
	if err != nil {
		return nil, infrastructure.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, infrastructure.ErrTokenExpired
	}

	if err := s.db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, err
	}

	return s.issuePair(stored.UserID)
}

func (s *Service) Logout(refreshToken string) error {
	result := s.db.Model(&database.RefreshToken{}).
		Where("token = ? AND revoked = ?", refreshToken, false).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return infrastructure.ErrInvalidToken
	}
	return nil
}

func (s *Service) issuePair(userID uuid.UUID) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refresh := &database.RefreshToken{
		Token:     infrastructure.GenerateRefreshToken(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(jwt.RefreshTokenTTL),
	}
	if err := s.db.Create(refresh).Error; err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh.Token}, nil
}
