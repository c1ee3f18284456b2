// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/storage"
)

// ErrNoSession is returned by Load when nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// KV is the key/value backend. SetMany and DeleteMany must be atomic.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// Session is an authenticated identity.
type Session struct {
	Token string
	User  api.User
}

// Store persists the session and caches the token for request signing.
type Store struct {
	kv     KV
	sealer *Sealer
	log    *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewStore creates a Store. A nil sealer stores the token in plain text.
func NewStore(kv KV, sealer *Sealer, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, sealer: sealer, log: logger.With("component", "session")}
}

// Save writes token and user together.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errors.New("session token is empty")
	}
	user := sess.User
	if user == nil {
		user = api.User{}
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	token := sess.Token
	if s.sealer != nil {
		if token, err = s.sealer.Seal(sess.Token); err != nil {
			return err
		}
	}

	if err := s.kv.SetMany(ctx, map[string]string{
		storage.KeyToken: token,
		storage.KeyUser:  string(userJSON),
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.setToken(sess.Token)
	s.log.Info("session saved", "user", user.DisplayName())
	return nil
}

// Load returns the stored session or ErrNoSession.
func (s *Store) Load(ctx context.Context) (Session, error) {
	stored, err := s.kv.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}

	token := stored
	if s.sealer != nil {
		if token, err = s.sealer.Open(stored); err != nil {
			return Session{}, fmt.Errorf("unseal token: %w", err)
		}
	}

	sess := Session{Token: token, User: api.User{}}
	if raw, err := s.kv.Get(ctx, storage.KeyUser); err == nil {
		if err := json.Unmarshal([]byte(raw), &sess.User); err != nil {
			s.log.Warn("stored user profile is unreadable", "error", err)
			sess.User = api.User{}
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		return Session{}, err
	}

	s.setToken(token)
	return sess, nil
}

// Clear removes token and user together.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.DeleteMany(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.setToken("")
	s.log.Info("session cleared")
	return nil
}

// Token returns the cached token from the last Save or Load. It is meant
// for api.Client.SetTokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) setToken(tok string) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// Establish runs an auth call and saves its result. Nothing is written when
// the call fails.
func (s *Store) Establish(ctx context.Context, auth func(context.Context) (*api.AuthResponse, error)) (Session, error) {
	resp, err := auth(ctx)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Token: resp.Token, User: resp.User}
	if err := s.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}
