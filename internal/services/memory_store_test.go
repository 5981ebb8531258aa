package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryUserStoreUniqueness(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{Username: "al", Email: "al@x.com"}))
	assert.ErrorIs(t, store.Create(ctx, &models.User{Username: "al", Email: "other@x.com"}), ErrDuplicateUser)
	assert.ErrorIs(t, store.Create(ctx, &models.User{Username: "bo", Email: "al@x.com"}), ErrDuplicateUser)
}

func TestMemoryUserStoreFindByIdentity(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	u := &models.User{Username: "al", Email: "al@x.com"}
	require.NoError(t, store.Create(ctx, u))
	assert.False(t, u.ID.IsZero())
	assert.False(t, u.CreatedAt.IsZero())

	got, err := store.FindByIdentity(ctx, "al", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = store.FindByIdentity(ctx, "", "al@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.FindByIdentity(ctx, "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryUserStoreFindByIdentityPrefersUsername(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	al := &models.User{Username: "al", Email: "al@x.com"}
	bo := &models.User{Username: "bo", Email: "bo@x.com"}
	require.NoError(t, store.Create(ctx, al))
	require.NoError(t, store.Create(ctx, bo))

	for i := 0; i < 20; i++ {
		got, err := store.FindByIdentity(ctx, "al", "bo@x.com")
		require.NoError(t, err)
		assert.Equal(t, al.ID, got.ID)
	}

	got, err := store.FindByIdentity(ctx, "nobody", "bo@x.com")
	require.NoError(t, err)
	assert.Equal(t, bo.ID, got.ID)
}

func TestMemoryUserStoreRotate(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	u := &models.User{Username: "al", Email: "al@x.com"}
	require.NoError(t, store.Create(ctx, u))

	assert.ErrorIs(t, store.RotateRefreshToken(ctx, u.ID, "", "next"), ErrRefreshTokenMismatch)

	require.NoError(t, store.SetRefreshToken(ctx, u.ID, "first"))
	assert.ErrorIs(t, store.RotateRefreshToken(ctx, u.ID, "stale", "next"), ErrRefreshTokenMismatch)
	require.NoError(t, store.RotateRefreshToken(ctx, u.ID, "first", "second"))
	assert.ErrorIs(t, store.RotateRefreshToken(ctx, u.ID, "first", "third"), ErrRefreshTokenMismatch)

	got, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.RefreshToken)

	require.NoError(t, store.ClearRefreshToken(ctx, u.ID))
	got, err = store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)
}

func TestMemoryUserStoreUpdateProfile(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	a := &models.User{Username: "al", Email: "al@x.com", FullName: "Al"}
	b := &models.User{Username: "bo", Email: "bo@x.com"}
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	taken := "bo@x.com"
	_, err := store.UpdateProfile(ctx, a.ID, ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	name, avatar := "Alan", "https://media/a2.png"
	got, err := store.UpdateProfile(ctx, a.ID, ProfileUpdate{FullName: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Alan", got.FullName)
	assert.Equal(t, avatar, got.Avatar)
	assert.Equal(t, "al@x.com", got.Email)

	_, err = store.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
