package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewSessionStore(client), mr
}

func activeSession(id string) domainauth.Session {
	now := time.Now()
	return domainauth.Session{
		ID:                id,
		UserID:            "user-1",
		SignedToken:       "signed.jwt.value",
		IssuedAt:          now,
		ExpiresAt:         now.Add(30 * time.Minute),
		AbsoluteExpiresAt: now.Add(12 * time.Hour),
		DeviceFingerprint: "fp-1",
		DeviceName:        "Chrome on Mac OS X",
		Status:            domainauth.SessionStatusActive,
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	sess := activeSession("sess-1")

	require.NoError(t, store.Save(ctx, sess))

	assert.True(t, mr.Exists("session:sess-1"))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.SignedToken, got.SignedToken)
	assert.Equal(t, sess.DeviceFingerprint, got.DeviceFingerprint)
	assert.Equal(t, domainauth.SessionStatusActive, got.Status)
}

func TestSessionStore_Save_TTLFollowsSlidingExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	sess := activeSession("sess-ttl")

	require.NoError(t, store.Save(context.Background(), sess))

	ttl := mr.TTL("session:sess-ttl")
	assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 2)
}

func TestSessionStore_Save_AbsoluteExpiryCapsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	sess := activeSession("sess-cap")
	sess.AbsoluteExpiresAt = time.Now().Add(5 * time.Minute)

	require.NoError(t, store.Save(context.Background(), sess))

	ttl := mr.TTL("session:sess-cap")
	assert.InDelta(t, (5 * time.Minute).Seconds(), ttl.Seconds(), 2)
}

func TestSessionStore_Save_RejectsExpired(t *testing.T) {
	store, _ := newTestStore(t)
	sess := activeSession("sess-old")
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	err := store.Save(context.Background(), sess)
	assert.Error(t, err)
}

func TestSessionStore_Save_RejectsEmptyID(t *testing.T) {
	store, _ := newTestStore(t)
	sess := activeSession("")

	err := store.Save(context.Background(), sess)
	assert.Error(t, err)
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Get_RevokedSessionIsCleanedUp(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// Write a revoked record directly, as the admin panel's logout would
	// leave behind.
	revoked := activeSession("sess-revoked")
	revoked.Status = domainauth.SessionStatusRevoked
	raw, err := json.Marshal(revoked)
	require.NoError(t, err)
	require.NoError(t, mr.Set("session:sess-revoked", string(raw)))

	_, err = store.Get(ctx, "sess-revoked")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("session:sess-revoked"))
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, activeSession("sess-del")))

	require.NoError(t, store.Delete(ctx, "sess-del"))
	assert.False(t, mr.Exists("session:sess-del"))

	// Deleting a missing or empty ID is a no-op.
	assert.NoError(t, store.Delete(ctx, "sess-del"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	store := NewSessionStoreWithPrefix(client, "adminsess:")

	require.NoError(t, store.Save(context.Background(), activeSession("sess-1")))
	assert.True(t, mr.Exists("adminsess:sess-1"))
}
