// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// FIELD NAMES
// =============================================================================

// Field names are checked in order; the first usable one wins.
var (
	primaryTextFields = []string{"answer", "simplified_answer", "message"}
	sourceListFields  = []string{"sources", "relevant_documents", "source_chunks"}
	sourceLabelFields = []string{"source", "name"}
	sourceBodyFields  = []string{"content", "text"}
)

// =============================================================================
// ANSWER PAYLOAD
// =============================================================================

// AnswerPayload is a backend answer kept verbatim. The client never owns its
// schema; accessors resolve the fields it understands and ignore the rest.
type AnswerPayload struct {
	raw json.RawMessage
	obj map[string]json.RawMessage // nil unless raw is a JSON object
}

// ParsePayload wraps a response body. It fails only on invalid JSON.
func ParsePayload(data []byte) (AnswerPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return AnswerPayload{}, nil
	}
	if !json.Valid(data) {
		return AnswerPayload{}, fmt.Errorf("answer payload is not valid JSON")
	}

	p := AnswerPayload{raw: append(json.RawMessage(nil), data...)}
	if data[0] == '{' {
		if err := json.Unmarshal(data, &p.obj); err != nil {
			return AnswerPayload{}, fmt.Errorf("decode answer payload: %w", err)
		}
	}
	return p, nil
}

// NewPayload marshals v and wraps the result.
func NewPayload(v any) (AnswerPayload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return AnswerPayload{}, err
	}
	return ParsePayload(data)
}

// IsZero reports whether the payload is empty or JSON null.
func (p AnswerPayload) IsZero() bool {
	return len(p.raw) == 0 || isNull(p.raw)
}

// Raw returns the verbatim JSON.
func (p AnswerPayload) Raw() json.RawMessage {
	return p.raw
}

// MarshalJSON emits the verbatim payload.
func (p AnswerPayload) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON accepts any JSON value.
func (p *AnswerPayload) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePayload(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// =============================================================================
// TEXT RESOLUTION
// =============================================================================

// ResolvedText is the displayable primary text of a payload.
type ResolvedText struct {
	Body  string
	JSON  bool   // Body is serialized JSON rather than prose
	Field string // field it came from; empty for the whole-payload fallback
}

// PrimaryText resolves the answer text: answer, then simplified_answer, then
// message. Empty and falsy values are skipped. Non-string values are
// serialized as indented JSON. A payload that is not an object falls back to
// itself. ok is false when nothing resolves.
func (p AnswerPayload) PrimaryText() (ResolvedText, bool) {
	if p.IsZero() {
		return ResolvedText{}, false
	}

	if p.obj == nil {
		var s string
		if err := json.Unmarshal(p.raw, &s); err == nil {
			if strings.TrimSpace(s) == "" {
				return ResolvedText{}, false
			}
			return ResolvedText{Body: s}, true
		}
		return ResolvedText{Body: indentJSON(p.raw), JSON: true}, true
	}

	for _, field := range primaryTextFields {
		v, ok := p.obj[field]
		if !ok || isFalsy(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return ResolvedText{Body: s, Field: field}, true
		}
		return ResolvedText{Body: indentJSON(v), JSON: true, Field: field}, true
	}
	return ResolvedText{}, false
}

// ErrorText returns the payload's error string, if any.
func (p AnswerPayload) ErrorText() string {
	return p.stringField("error")
}

// Question returns the question echoed back by the backend, if any.
func (p AnswerPayload) Question() string {
	return p.stringField("question")
}

func (p AnswerPayload) stringField(name string) string {
	v, ok := p.obj[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// =============================================================================
// SOURCES
// =============================================================================

// Source is one citation shown alongside an answer.
type Source struct {
	Label string `json:"label" yaml:"label"`
	Body  string `json:"body" yaml:"body"`
}

// Sources resolves the citation list from sources, relevant_documents or
// source_chunks, whichever is the first non-empty list. Entries that are not
// objects are skipped.
func (p AnswerPayload) Sources() []Source {
	for _, field := range sourceListFields {
		v, ok := p.obj[field]
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(v, &entries); err != nil || len(entries) == 0 {
			continue
		}

		sources := make([]Source, 0, len(entries))
		for _, entry := range entries {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(entry, &fields); err != nil {
				continue
			}
			src := Source{
				Label: firstString(fields, sourceLabelFields),
				Body:  firstString(fields, sourceBodyFields),
			}
			if src.Label == "" {
				src.Label = metadataSource(fields)
			}
			if src.Label == "" {
				src.Label = fmt.Sprintf("Source %d", len(sources)+1)
			}
			sources = append(sources, src)
		}
		if len(sources) > 0 {
			return sources
		}
	}
	return nil
}

func firstString(fields map[string]json.RawMessage, names []string) string {
	for _, name := range names {
		v, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// metadataSource reads metadata.source, the shape used by raw retrieval chunks.
func metadataSource(fields map[string]json.RawMessage) string {
	v, ok := fields["metadata"]
	if !ok {
		return ""
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(v, &meta); err != nil {
		return ""
	}
	return firstString(meta, []string{"source"})
}

// =============================================================================
// HELPERS
// =============================================================================

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// isFalsy matches the values a loose truthiness check would skip.
func isFalsy(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

func indentJSON(v json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, v, "", "  "); err != nil {
		return string(v)
	}
	return buf.String()
}
