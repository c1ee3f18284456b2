// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/storage"
)

// Low work factor keeps tests fast.
const testIterations = 1000

// countingKV records writes on top of a real database.
type countingKV struct {
	*storage.DB
	writes int
}

func (c *countingKV) SetMany(ctx context.Context, values map[string]string) error {
	c.writes++
	return c.DB.SetMany(ctx, values)
}

func (c *countingKV) DeleteMany(ctx context.Context, keys ...string) error {
	c.writes++
	return c.DB.DeleteMany(ctx, keys...)
}

func newTestStore(t *testing.T) (*Store, *countingKV, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, storage.DatabaseFile), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sealer, err := NewSealer(filepath.Join(dir, SecretFile), testIterations)
	require.NoError(t, err)

	kv := &countingKV{DB: db}
	return NewStore(kv, sealer, nil), kv, dir
}

// =============================================================================
// SEALER TESTS
// =============================================================================

func TestSealer_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), SecretFile)
	s, err := NewSealer(path, testIterations)
	require.NoError(t, err)

	sealed, err := s.Seal("jwt-abc")
	require.NoError(t, err)
	require.True(t, IsEncrypted(sealed))
	require.NotContains(t, sealed, "jwt-abc")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "jwt-abc", plain)

	again, err := s.Seal("jwt-abc")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonces must differ")
}

func TestSealer_SecretFileReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SecretFile)
	first, err := NewSealer(path, testIterations)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sealed, err := first.Seal("token")
	require.NoError(t, err)

	second, err := NewSealer(path, testIterations)
	require.NoError(t, err)
	plain, err := second.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "token", plain)
}

func TestSealer_OpenErrors(t *testing.T) {
	s, err := NewSealer(filepath.Join(t.TempDir(), SecretFile), testIterations)
	require.NoError(t, err)

	plain, err := s.Open("legacy-plain")
	require.NoError(t, err)
	require.Equal(t, "legacy-plain", plain)

	_, err = s.Open(EncryptedPrefix + "!!!")
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = s.Open(EncryptedPrefix + "AAAA")
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	other, err := NewSealer(filepath.Join(t.TempDir(), SecretFile), testIterations)
	require.NoError(t, err)
	sealed, err := other.Seal("x")
	require.NoError(t, err)
	_, err = s.Open(sealed)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewSealer_CorruptSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), SecretFile)
	require.NoError(t, os.WriteFile(path, []byte("not-a-secret"), 0o600))

	_, err := NewSealer(path, testIterations)
	require.ErrorIs(t, err, ErrInvalidSecret)
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_SaveLoadClear(t *testing.T) {
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	require.Empty(t, store.Token())

	require.NoError(t, store.Save(ctx, Session{
		Token: "jwt-abc",
		User:  api.User{"username": "asha", "email": "asha@example.com"},
	}))
	require.Equal(t, "jwt-abc", store.Token())

	raw, err := kv.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, EncryptedPrefix))

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "jwt-abc", sess.Token)
	require.Equal(t, "asha", sess.User.DisplayName())

	require.NoError(t, store.Clear(ctx))
	require.Empty(t, store.Token())
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = kv.Get(ctx, storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	store, kv, _ := newTestStore(t)

	require.Error(t, store.Save(context.Background(), Session{}))
	require.Zero(t, kv.writes)
}

func TestStore_EstablishFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"detail": "email taken"})
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{AuthURL: srv.URL})
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Establish(ctx, func(ctx context.Context) (*api.AuthResponse, error) {
		return client.Signup(ctx, api.SignupRequest{
			Username: "asha", Email: "asha@example.com", Password: "pw", ConfirmPassword: "pw",
		})
	})
	require.EqualError(t, err, "email taken")
	require.Zero(t, kv.writes)

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestStore_EstablishSuccessPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "jwt-xyz", "user": map[string]any{"email": "b@c.d"}})
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{AuthURL: srv.URL})
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Establish(ctx, func(ctx context.Context) (*api.AuthResponse, error) {
		return client.Signin(ctx, api.SigninRequest{Email: "b@c.d", Password: "pw"})
	})
	require.NoError(t, err)
	require.Equal(t, "jwt-xyz", sess.Token)
	require.Equal(t, 1, kv.writes)

	client.SetTokenSource(store.Token)
	require.Equal(t, "jwt-xyz", store.Token())
}
