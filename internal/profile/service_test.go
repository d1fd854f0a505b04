package profile

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/infrastructure"
	"mingle/internal/blob"
	"mingle/internal/database"
	"mingle/internal/database/databasetest"
)

func newService(t *testing.T) (*Service, *database.Database) {
	t.Helper()
	db := databasetest.Open(t)
	blobs, err := blob.NewStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return NewService(db, blobs, nil), db
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

func str(s string) *string { return &s }

func TestUpdateUsername(t *testing.T) {
	svc, db := newService(t)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	t.Run("valid username is stored lowercase", func(t *testing.T) {
		got, err := svc.Update(alice, UpdateInput{Username: str("Alice_99")})
		require.NoError(t, err)
		require.NotNil(t, got.Username)
		assert.Equal(t, "alice_99", *got.Username)
	})

	t.Run("uniqueness is case-insensitive", func(t *testing.T) {
		_, err := svc.Update(bob, UpdateInput{Username: str("ALICE_99")})
		assert.ErrorIs(t, err, infrastructure.ErrUsernameTaken)
	})

	t.Run("rejected shapes", func(t *testing.T) {
		for _, bad := range []string{"ab", "has space", "dash-ed", "Ünïcode", strings.Repeat("a", 31)} {
			_, err := svc.Update(alice, UpdateInput{Username: str(bad)})
			assert.ErrorIs(t, err, infrastructure.ErrInvalidInput, "username %q", bad)
		}
	})
}

func TestUpdateFields(t *testing.T) {
	svc, db := newService(t)
	alice := seedProfile(t, db, "Alice")

	t.Run("bio at the limit is accepted", func(t *testing.T) {
		bio := strings.Repeat("x", 200)
		got, err := svc.Update(alice, UpdateInput{Bio: str(bio)})
		require.NoError(t, err)
		assert.Equal(t, bio, got.Bio)
	})

	t.Run("bio over the limit is rejected", func(t *testing.T) {
		_, err := svc.Update(alice, UpdateInput{Bio: str(strings.Repeat("x", 201))})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})

	t.Run("display name cannot be blanked", func(t *testing.T) {
		_, err := svc.Update(alice, UpdateInput{DisplayName: str("   ")})
		assert.ErrorIs(t, err, infrastructure.ErrInvalidInput)
	})

	t.Run("nil fields leave the profile untouched", func(t *testing.T) {
		got, err := svc.Update(alice, UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.DisplayName)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := svc.Update(uuid.New(), UpdateInput{DisplayName: str("Ghost")})
		assert.ErrorIs(t, err, infrastructure.ErrNotFound)
	})
}

func TestUpdateAvatar(t *testing.T) {
	svc, db := newService(t)
	alice := seedProfile(t, db, "Alice")

	got, err := svc.UpdateAvatar(alice, []byte("png-bytes"), "image/png", ".png")
	require.NoError(t, err)
	assert.Contains(t, got.AvatarURL, "/files/avatars/")

	first := got.AvatarURL
	got, err = svc.UpdateAvatar(alice, []byte("newer-png"), "image/png", ".png")
	require.NoError(t, err)
	assert.NotEqual(t, first, got.AvatarURL)

	_, err = svc.UpdateAvatar(alice, []byte("plain text"), "text/plain", ".txt")
	assert.ErrorIs(t, err, infrastructure.ErrUnsupportedType)
}

func TestSetStatus(t *testing.T) {
	svc, db := newService(t)
	alice := seedProfile(t, db, "Alice")

	require.NoError(t, svc.SetStatus(alice, database.StatusOnline))

	got, err := svc.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, database.StatusOnline, got.Status)
	assert.NotNil(t, got.LastSeen)

	assert.ErrorIs(t, svc.SetStatus(alice, "invisible"), infrastructure.ErrInvalidInput)
}
