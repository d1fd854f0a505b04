package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/infrastructure"
	"mingle/internal/database"
	"mingle/internal/database/databasetest"
	"mingle/pkg/jwt"
)

type fakeMailer struct {
	to    string
	codes []string
}

func (m *fakeMailer) SendVerificationEmail(to, _ string, code string) error {
	m.to = to
	m.codes = append(m.codes, code)
	return nil
}

func newService(t *testing.T) (*Service, *fakeMailer, *database.Database) {
	t.Helper()
	db := databasetest.Open(t)
	mailer := &fakeMailer{}
	return NewService(db, jwt.NewJWT([]byte("test-secret")), mailer), mailer, db
}

const strongPassword = "correct-horse-battery-staple-91"

func register(t *testing.T, svc *Service, email string) *database.User {
	t.Helper()
	user, err := svc.Register(RegisterInput{
		Email:       email,
		Password:    strongPassword,
		DisplayName: "Someone",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	t.Run("creates user and profile, sends the code", func(t *testing.T) {
		svc, mailer, db := newService(t)

		user := register(t, svc, "Alice@Example.com")
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.Verified)
		assert.Equal(t, "alice@example.com", mailer.to)
		require.Len(t, mailer.codes, 1)
		assert.Equal(t, user.VerificationCode, mailer.codes[0])

		var profile database.Profile
		require.NoError(t, db.First(&profile, "id = ?", user.ID).Error)
		assert.Equal(t, "Someone", profile.DisplayName)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := newService(t)
		register(t, svc, "alice@example.com")

		_, err := svc.Register(RegisterInput{
			Email:       "ALICE@example.com",
			Password:    strongPassword,
			DisplayName: "Impostor",
		})
		assert.ErrorIs(t, err, infrastructure.ErrUserAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Register(RegisterInput{
			Email:       "bob@example.com",
			Password:    "12345",
			DisplayName: "Bob",
		})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})

	t.Run("malformed input", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Register(RegisterInput{Email: "not-an-email", Password: strongPassword, DisplayName: "X"})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
		_, err = svc.Register(RegisterInput{Email: "x@example.com", Password: strongPassword, DisplayName: "  "})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})
}

func TestVerifyAndLogin(t *testing.T) {
	svc, mailer, _ := newService(t)
	user := register(t, svc, "alice@example.com")

	_, err := svc.Login(user.Email, strongPassword)
	assert.ErrorIs(t, err, infrastructure.ErrEmailNotVerified)

	assert.ErrorIs(t, svc.VerifyEmail(user.Email, "wrong"), infrastructure.ErrInvalidInput)
	require.NoError(t, svc.VerifyEmail(user.Email, mailer.codes[0]))
	// Repeating verification is harmless.
	require.NoError(t, svc.VerifyEmail(user.Email, "anything"))

	_, err = svc.Login(user.Email, "wrong-password")
	assert.ErrorIs(t, err, infrastructure.ErrUnauthorized)

	pair, err := svc.Login(user.Email, strongPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshRotation(t *testing.T) {
	svc, mailer, _ := newService(t)
	user := register(t, svc, "alice@example.com")
	require.NoError(t, svc.VerifyEmail(user.Email, mailer.codes[0]))

	pair, err := svc.Login(user.Email, strongPassword)
	require.NoError(t, err)

	next, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old token was consumed by rotation.
	_, err = svc.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, infrastructure.ErrInvalidToken)

	require.NoError(t, svc.Logout(next.RefreshToken))
	_, err = svc.Refresh(next.RefreshToken)
	assert.ErrorIs(t, err, infrastructure.ErrInvalidToken)
	assert.ErrorIs(t, svc.Logout(next.RefreshToken), infrastructure.ErrInvalidToken)
}
