// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/lexora-tui/internal/util"
)

// DefaultTitle is the title of a conversation with no exchanges yet.
const DefaultTitle = "New Chat"

// TitlePrefixLen is how many runes of the first answer become the title.
const TitlePrefixLen = 30

// =============================================================================
// EXCHANGE KIND
// =============================================================================

// ExchangeKind tags what an Exchange records. The zero value is invalid so
// an unset kind is never mistaken for an answer.
type ExchangeKind int

const (
	KindUnknown ExchangeKind = iota
	// KindAnswer is a response the backend produced for a question.
	KindAnswer
)

// String returns the stable name used in storage and exports.
func (k ExchangeKind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ExchangeKind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, fmt.Errorf("cannot encode unknown exchange kind")
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ExchangeKind) UnmarshalText(text []byte) error {
	kind, err := ParseExchangeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseExchangeKind maps a stored name back to its kind.
func ParseExchangeKind(s string) (ExchangeKind, error) {
	switch s {
	case "answer":
		return KindAnswer, nil
	default:
		return KindUnknown, fmt.Errorf("unknown exchange kind %q", s)
	}
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange is one recorded turn. Exchanges are appended and never edited.
type Exchange struct {
	ID        string        `json:"id"`
	Kind      ExchangeKind  `json:"kind"`
	Question  string        `json:"question,omitempty"`
	Payload   AnswerPayload `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewAnswerExchange builds a KindAnswer exchange with a fresh id.
func NewAnswerExchange(question string, payload AnswerPayload) Exchange {
	return Exchange{
		ID:        uuid.NewString(),
		Kind:      KindAnswer,
		Question:  question,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is a titled thread of exchanges in display order.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Exchanges []Exchange `json:"exchanges"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewConversation returns an empty conversation titled DefaultTitle.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Exchanges: []Exchange{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Len returns the number of exchanges.
func (c *Conversation) Len() int {
	return len(c.Exchanges)
}

// Last returns the most recent exchange.
func (c *Conversation) Last() (Exchange, bool) {
	if len(c.Exchanges) == 0 {
		return Exchange{}, false
	}
	return c.Exchanges[len(c.Exchanges)-1], true
}

// append records ex and derives the title when it is the first exchange.
func (c *Conversation) append(ex Exchange) {
	first := len(c.Exchanges) == 0
	c.Exchanges = append(c.Exchanges, ex)
	c.UpdatedAt = ex.CreatedAt
	if first {
		if title, ok := DeriveTitle(ex.Payload); ok {
			c.Title = title
		}
	}
}

// Clone returns a copy whose exchange slice is independent of c's.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Exchanges = append([]Exchange(nil), c.Exchanges...)
	return &clone
}

// DeriveTitle builds a title from the first TitlePrefixLen runes of the
// payload's primary text, always followed by an ellipsis. ok is false when
// the payload has no usable text.
func DeriveTitle(p AnswerPayload) (string, bool) {
	text, ok := p.PrimaryText()
	if !ok {
		return "", false
	}
	body := util.CollapseSpace(text.Body)
	if body == "" {
		return "", false
	}
	return util.PrefixRunes(body, TitlePrefixLen) + util.Ellipsis, true
}
