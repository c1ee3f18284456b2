// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/lexora-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
	ID      string
}

func (e *ConversationError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// Is compares by message so an error carrying an ID still matches the sentinel.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// CONVERSATION META
// =============================================================================

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ExchangeCount int       `json:"exchange_count"`
	Preview       string    `json:"preview"` // first question
	Active        bool      `json:"active"`
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore persists workspaces.
type ConversationStore struct {
	db *DB

	// MaxConversations limits stored conversations (0 = unlimited).
	// The oldest by update time are pruned on load; the active one is kept.
	MaxConversations int
}

// NewConversationStore creates a store on db.
func NewConversationStore(db *DB, maxConversations int) *ConversationStore {
	return &ConversationStore{db: db, MaxConversations: maxConversations}
}

// SaveWorkspace writes every conversation and the active id in one
// transaction. Only conversations deleted from ws are removed; rows written
// by another process since ws was loaded are left in place.
func (s *ConversationStore) SaveWorkspace(ctx context.Context, ws *model.Workspace) error {
	convs := ws.Conversations()
	removed := ws.Removed()
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		for pos, c := range convs {
			if err := saveConversation(ctx, tx, c, pos); err != nil {
				return err
			}
		}

		if len(removed) > 0 {
			ids := make([]any, len(removed))
			for i, id := range removed {
				ids[i] = id
			}
			query := "DELETE FROM conversations WHERE id IN (" + placeholders(len(ids)) + ")"
			if _, err := tx.ExecContext(ctx, query, ids...); err != nil {
				return fmt.Errorf("remove deleted conversations: %w", err)
			}
		}

		return setKV(ctx, tx, map[string]string{KeyActiveConversation: ws.ActiveID()})
	})
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	s.db.log.Debug("workspace saved", "conversations", len(convs), "removed", len(removed), "active", ws.ActiveID())
	return nil
}

func saveConversation(ctx context.Context, tx *sql.Tx, c *model.Conversation, pos int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			position = excluded.position,
			updated_at = excluded.updated_at`,
		c.ID, c.Title, pos, c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save conversation %s: %w", c.ID, err)
	}

	// Exchanges are append-only; existing rows are left alone.
	for seq, ex := range c.Exchanges {
		payload, err := ex.Payload.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO exchanges (id, conversation_id, seq, kind, question, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			ex.ID, c.ID, seq, ex.Kind.String(), ex.Question, string(payload), ex.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("save exchange %s: %w", ex.ID, err)
		}
	}
	return nil
}

// LoadWorkspace restores the saved workspace. An empty database yields a
// fresh workspace with one conversation.
func (s *ConversationStore) LoadWorkspace(ctx context.Context) (*model.Workspace, error) {
	activeID, err := s.db.Get(ctx, KeyActiveConversation)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	if s.MaxConversations > 0 {
		if err := s.prune(ctx, activeID); err != nil {
			return nil, err
		}
	}

	convs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.Restore(convs, activeID), nil
}

func (s *ConversationStore) loadAll(ctx context.Context) ([]*model.Conversation, error) {
	rows, err := s.db.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*model.Conversation
	byID := map[string]*model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedAt = time.Unix(0, created)
		c.UpdatedAt = time.Unix(0, updated)
		c.Exchanges = []model.Exchange{}
		convs = append(convs, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exRows, err := s.db.db.QueryContext(ctx,
		"SELECT id, conversation_id, kind, question, payload, created_at FROM exchanges ORDER BY conversation_id, seq")
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var convID string
		ex, err := scanExchange(exRows, &convID)
		if err != nil {
			return nil, err
		}
		if c, ok := byID[convID]; ok {
			c.Exchanges = append(c.Exchanges, ex)
		}
	}
	return convs, exRows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner, convID *string) (model.Exchange, error) {
	var ex model.Exchange
	var kind, payload string
	var created int64
	if err := row.Scan(&ex.ID, convID, &kind, &ex.Question, &payload, &created); err != nil {
		return ex, fmt.Errorf("scan exchange: %w", err)
	}
	k, err := model.ParseExchangeKind(kind)
	if err != nil {
		return ex, err
	}
	ex.Kind = k
	ex.CreatedAt = time.Unix(0, created)
	if ex.Payload, err = model.ParsePayload([]byte(payload)); err != nil {
		return ex, fmt.Errorf("exchange %s: %w", ex.ID, err)
	}
	return ex, nil
}

// prune deletes the oldest conversations beyond MaxConversations.
func (s *ConversationStore) prune(ctx context.Context, keepID string) error {
	keep := s.MaxConversations
	if keepID != "" {
		keep--
	}
	res, err := s.db.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE id IN (
			SELECT id FROM conversations WHERE id != ?
			ORDER BY updated_at DESC LIMIT -1 OFFSET ?
		)`, keepID, keep)
	if err != nil {
		return fmt.Errorf("prune conversations: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.db.log.Info("pruned old conversations", "count", n, "limit", s.MaxConversations)
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Get loads one conversation by id.
func (s *ConversationStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	var c model.Conversation
	var created, updated int64
	err := s.db.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?", id).
		Scan(&c.ID, &c.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ConversationError{Message: ErrConversationNotFound.Message, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	c.CreatedAt = time.Unix(0, created)
	c.UpdatedAt = time.Unix(0, updated)
	c.Exchanges = []model.Exchange{}

	rows, err := s.db.db.QueryContext(ctx,
		"SELECT id, conversation_id, kind, question, payload, created_at FROM exchanges WHERE conversation_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("load exchanges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var convID string
		ex, err := scanExchange(rows, &convID)
		if err != nil {
			return nil, err
		}
		c.Exchanges = append(c.Exchanges, ex)
	}
	return &c, rows.Err()
}

// List returns conversation metadata in display order.
func (s *ConversationStore) List(ctx context.Context) ([]ConversationMeta, error) {
	return s.listWhere(ctx, "", nil)
}

// Search finds conversations whose title or any question contains query
// (case-insensitive). An empty query lists everything.
func (s *ConversationStore) Search(ctx context.Context, query string) ([]ConversationMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.listWhere(ctx, `
		WHERE lower(c.title) LIKE ? ESCAPE '\'
		OR EXISTS (SELECT 1 FROM exchanges e2 WHERE e2.conversation_id = c.id AND lower(e2.question) LIKE ? ESCAPE '\')`,
		[]any{pattern, pattern})
}

func (s *ConversationStore) listWhere(ctx context.Context, where string, args []any) ([]ConversationMeta, error) {
	if s.db.db == nil {
		return nil, ErrClosed
	}
	activeID, err := s.db.Get(ctx, KeyActiveConversation)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	rows, err := s.db.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM exchanges e WHERE e.conversation_id = c.id),
			COALESCE((SELECT e.question FROM exchanges e WHERE e.conversation_id = c.id ORDER BY e.seq LIMIT 1), '')
		FROM conversations c `+where+`
		ORDER BY c.position, c.created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	metas := []ConversationMeta{}
	for rows.Next() {
		var m ConversationMeta
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Title, &created, &updated, &m.ExchangeCount, &m.Preview); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		m.CreatedAt = time.Unix(0, created)
		m.UpdatedAt = time.Unix(0, updated)
		m.Active = m.ID == activeID
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
