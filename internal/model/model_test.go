// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPayload(t *testing.T, raw string) AnswerPayload {
	t.Helper()
	p, err := ParsePayload([]byte(raw))
	require.NoError(t, err)
	return p
}

// =============================================================================
// WORKSPACE TESTS
// =============================================================================

func TestNewWorkspace_HasOneActiveConversation(t *testing.T) {
	ws := NewWorkspace()

	require.Equal(t, 1, ws.Len())
	active := ws.Active()
	require.NotNil(t, active)
	require.Equal(t, DefaultTitle, active.Title)
	require.Zero(t, active.Len())
}

func TestCreateConversation_BecomesActive(t *testing.T) {
	ws := NewWorkspace()
	first := ws.ActiveID()

	c := ws.CreateConversation()

	require.Equal(t, 2, ws.Len())
	require.Equal(t, c.ID, ws.ActiveID())
	require.NotEqual(t, first, c.ID)
	require.Equal(t, "New Chat", c.Title)
}

func TestDeleteConversation_LastIsRefused(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()

	err := ws.DeleteConversation(id)

	require.ErrorIs(t, err, ErrLastConversation)
	require.Equal(t, 1, ws.Len())
	require.Equal(t, id, ws.ActiveID())
}

func TestDeleteConversation_Unknown(t *testing.T) {
	ws := NewWorkspace()
	require.ErrorIs(t, ws.DeleteConversation("nope"), ErrConversationNotFound)
}

func TestDeleteConversation_ActiveFallback(t *testing.T) {
	tests := []struct {
		name       string
		deleteAt   int
		wantActive int // index into the original list
	}{
		{name: "first moves to second", deleteAt: 0, wantActive: 1},
		{name: "middle moves to next", deleteAt: 1, wantActive: 2},
		{name: "last moves to previous", deleteAt: 2, wantActive: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkspace()
			ws.CreateConversation()
			ws.CreateConversation()
			ids := []string{}
			for _, c := range ws.Conversations() {
				ids = append(ids, c.ID)
			}
			require.NoError(t, ws.SetActive(ids[tt.deleteAt]))

			require.NoError(t, ws.DeleteConversation(ids[tt.deleteAt]))

			require.Equal(t, 2, ws.Len())
			require.Equal(t, ids[tt.wantActive], ws.ActiveID())
		})
	}
}

func TestDeleteConversation_InactiveKeepsSelection(t *testing.T) {
	ws := NewWorkspace()
	first := ws.ActiveID()
	second := ws.CreateConversation().ID

	require.NoError(t, ws.DeleteConversation(first))
	require.Equal(t, second, ws.ActiveID())
}

func TestDeleteConversation_RecordsRemoved(t *testing.T) {
	ws := NewWorkspace()
	first := ws.ActiveID()
	ws.CreateConversation()
	require.Empty(t, ws.Removed())

	require.NoError(t, ws.DeleteConversation(first))
	require.Equal(t, []string{first}, ws.Removed())

	// Refused deletes record nothing.
	require.ErrorIs(t, ws.DeleteConversation(ws.ActiveID()), ErrLastConversation)
	require.Equal(t, []string{first}, ws.Removed())
}

// Random create/delete sequences never empty the set and the active id is
// always a member of it.
func TestWorkspace_NeverEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ws := NewWorkspace()

	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			ws.CreateConversation()
		} else {
			convs := ws.Conversations()
			target := convs[rng.Intn(len(convs))].ID
			before := ws.Len()
			err := ws.DeleteConversation(target)
			if before == 1 {
				require.ErrorIs(t, err, ErrLastConversation)
				require.Equal(t, 1, ws.Len())
			} else {
				require.NoError(t, err)
			}
		}

		require.GreaterOrEqual(t, ws.Len(), 1)
		_, ok := ws.Get(ws.ActiveID())
		require.True(t, ok, "active id must belong to the set")
	}
}

func TestRenameConversation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "trimmed", input: "  Foo  ", want: "Foo"},
		{name: "plain", input: "Contracts", want: "Contracts"},
		{name: "empty", input: "", want: DefaultTitle, wantErr: ErrEmptyTitle},
		{name: "whitespace", input: " \t\n ", want: DefaultTitle, wantErr: ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkspace()
			id := ws.ActiveID()

			err := ws.RenameConversation(id, tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, ws.Active().Title)
		})
	}
}

func TestAppendAnswer_TitleFromFirstAnswerOnly(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()

	_, err := ws.AppendAnswer(id, "q1", mustPayload(t, `{"answer":"The Indian Penal Code defines offences and penalties."}`))
	require.NoError(t, err)
	require.Equal(t, "The Indian Penal Code defines ...", ws.Active().Title)

	_, err = ws.AppendAnswer(id, "q2", mustPayload(t, `{"answer":"Something else entirely"}`))
	require.NoError(t, err)

	active := ws.Active()
	require.Equal(t, "The Indian Penal Code defines ...", active.Title)
	require.Equal(t, 2, active.Len())
	require.Equal(t, "q1", active.Exchanges[0].Question)
	require.Equal(t, "q2", active.Exchanges[1].Question)
}

func TestAppendAnswer_RenamedTitleSurvivesLaterAnswers(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()
	_, err := ws.AppendAnswer(id, "q", mustPayload(t, `{"answer":"first"}`))
	require.NoError(t, err)
	require.NoError(t, ws.RenameConversation(id, "Mine"))

	_, err = ws.AppendAnswer(id, "q", mustPayload(t, `{"answer":"second"}`))
	require.NoError(t, err)
	require.Equal(t, "Mine", ws.Active().Title)
}

func TestAppendAnswer_NoTextKeepsDefaultTitle(t *testing.T) {
	ws := NewWorkspace()
	_, err := ws.AppendAnswer(ws.ActiveID(), "q", mustPayload(t, `{"status":"ok"}`))
	require.NoError(t, err)
	require.Equal(t, DefaultTitle, ws.Active().Title)
	require.Equal(t, 1, ws.Active().Len())
}

func TestConversations_ReturnsCopies(t *testing.T) {
	ws := NewWorkspace()
	convs := ws.Conversations()
	convs[0].Title = "mutated"

	require.Equal(t, DefaultTitle, ws.Active().Title)
}

func TestRestore(t *testing.T) {
	a := NewConversation()
	b := NewConversation()

	ws := Restore([]*Conversation{a, b}, b.ID)
	require.Equal(t, 2, ws.Len())
	require.Equal(t, b.ID, ws.ActiveID())

	ws = Restore([]*Conversation{a, b}, "gone")
	require.Equal(t, a.ID, ws.ActiveID())

	ws = Restore(nil, "")
	require.Equal(t, 1, ws.Len())
	require.Equal(t, DefaultTitle, ws.Active().Title)
}

func TestSelectOffset_Clamps(t *testing.T) {
	ws := NewWorkspace()
	first := ws.ActiveID()
	ws.CreateConversation()
	last := ws.CreateConversation().ID

	ws.SelectOffset(10)
	require.Equal(t, last, ws.ActiveID())
	ws.SelectOffset(-10)
	require.Equal(t, first, ws.ActiveID())
}

// =============================================================================
// REDUCER TESTS
// =============================================================================

// Submitting "What is Section 302?" and receiving one cited answer appends
// a single exchange and titles the conversation from the answer.
func TestApply_QueryScenario(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()
	payload := mustPayload(t, `{"answer":"Section 302 defines murder.","sources":[{"source":"ipc.pdf","content":"Whoever commits murder shall be punished..."}]}`)

	_, err := ws.Apply(QuerySubmitted{ConversationID: id, Question: "What is Section 302?"})
	require.NoError(t, err)
	require.True(t, ws.Loading)

	touched, err := ws.Apply(QuerySucceeded{ConversationID: id, Question: "What is Section 302?", Payload: payload})
	require.NoError(t, err)
	require.Equal(t, id, touched)
	require.False(t, ws.Loading)

	active := ws.Active()
	require.Equal(t, 1, active.Len())
	require.Equal(t, "Section 302 defines murder....", active.Title)
	ex := active.Exchanges[0]
	require.Equal(t, KindAnswer, ex.Kind)
	sources := ex.Payload.Sources()
	require.Len(t, sources, 1)
	require.Equal(t, "ipc.pdf", sources[0].Label)
}

func TestApply_QueryFailed(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()

	_, err := ws.Apply(QuerySubmitted{ConversationID: id, Question: "q"})
	require.NoError(t, err)
	_, err = ws.Apply(QueryFailed{ConversationID: id, Message: "backend down"})
	require.NoError(t, err)

	require.False(t, ws.Loading)
	require.Equal(t, "backend down", ws.LastError)
	require.Zero(t, ws.Active().Len())

	_, err = ws.Apply(QuerySubmitted{ConversationID: id, Question: "again"})
	require.NoError(t, err)
	require.Empty(t, ws.LastError)
}

func TestApply_DeletedTargetFallsBackToActive(t *testing.T) {
	ws := NewWorkspace()
	target := ws.ActiveID()
	other := ws.CreateConversation().ID
	require.NoError(t, ws.DeleteConversation(target))

	touched, err := ws.Apply(QuerySucceeded{ConversationID: target, Payload: mustPayload(t, `{"answer":"x"}`)})
	require.NoError(t, err)
	require.Equal(t, other, touched)
	require.Equal(t, 1, ws.Active().Len())
}

func TestApply_OrderPreserved(t *testing.T) {
	ws := NewWorkspace()
	id := ws.ActiveID()
	for _, a := range []string{"one", "two", "three"} {
		_, err := ws.Apply(QuerySucceeded{ConversationID: id, Question: a, Payload: mustPayload(t, `{"answer":"`+a+`"}`)})
		require.NoError(t, err)
	}

	got := []string{}
	for _, ex := range ws.Active().Exchanges {
		got = append(got, ex.Question)
	}
	require.Equal(t, []string{"one", "two", "three"}, got)
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestPrimaryText_Resolution(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantJSON bool
		wantOK   bool
	}{
		{name: "answer wins", raw: `{"answer":"a","simplified_answer":"s","message":"m"}`, want: "a", wantOK: true},
		{name: "simplified next", raw: `{"simplified_answer":"s","message":"m"}`, want: "s", wantOK: true},
		{name: "message alone", raw: `{"message":"m"}`, want: "m", wantOK: true},
		{name: "empty answer skipped", raw: `{"answer":"","message":"m"}`, want: "m", wantOK: true},
		{name: "null answer skipped", raw: `{"answer":null,"simplified_answer":"s"}`, want: "s", wantOK: true},
		{name: "object answer serialized", raw: `{"answer":{"k":1}}`, want: "{\n  \"k\": 1\n}", wantJSON: true, wantOK: true},
		{name: "bare string payload", raw: `"just text"`, want: "just text", wantOK: true},
		{name: "array payload serialized", raw: `[1,2]`, want: "[\n  1,\n  2\n]", wantJSON: true, wantOK: true},
		{name: "no recognized field", raw: `{"status":"ok"}`, wantOK: false},
		{name: "error only", raw: `{"error":"boom"}`, wantOK: false},
		{name: "null payload", raw: `null`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := mustPayload(t, tt.raw).PrimaryText()
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, text.Body)
			require.Equal(t, tt.wantJSON, text.JSON)
		})
	}
}

func TestSources_AlternateShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Source
	}{
		{
			name: "sources with source/content",
			raw:  `{"sources":[{"source":"ipc.pdf","content":"excerpt"}]}`,
			want: []Source{{Label: "ipc.pdf", Body: "excerpt"}},
		},
		{
			name: "relevant_documents with name/text",
			raw:  `{"relevant_documents":[{"name":"crpc.pdf","text":"body"}]}`,
			want: []Source{{Label: "crpc.pdf", Body: "body"}},
		},
		{
			name: "empty sources falls through",
			raw:  `{"sources":[],"relevant_documents":[{"name":"x","text":"y"}]}`,
			want: []Source{{Label: "x", Body: "y"}},
		},
		{
			name: "source_chunks metadata label",
			raw:  `{"source_chunks":[{"text":"chunk","metadata":{"source":"act.pdf","chunk":3}}]}`,
			want: []Source{{Label: "act.pdf", Body: "chunk"}},
		},
		{
			name: "unlabeled gets ordinal",
			raw:  `{"sources":[{"content":"a"},"junk",{"content":"b"}]}`,
			want: []Source{{Label: "Source 1", Body: "a"}, {Label: "Source 2", Body: "b"}},
		},
		{
			name: "none",
			raw:  `{"answer":"x"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustPayload(t, tt.raw).Sources())
		})
	}
}

func TestPayload_ErrorAndQuestion(t *testing.T) {
	p := mustPayload(t, `{"error":"index offline","question":"q?"}`)
	require.Equal(t, "index offline", p.ErrorText())
	require.Equal(t, "q?", p.Question())

	require.Empty(t, mustPayload(t, `{"error":{"code":1}}`).ErrorText())
}

func TestParsePayload_Invalid(t *testing.T) {
	_, err := ParsePayload([]byte(`{"answer":`))
	require.Error(t, err)

	p, err := ParsePayload(nil)
	require.NoError(t, err)
	require.True(t, p.IsZero())
}

func TestExchange_JSONKeepsPayloadVerbatim(t *testing.T) {
	raw := `{"answer":"a","extra":{"nested":[1,2]}}`
	ex := NewAnswerExchange("q", mustPayload(t, raw))

	data, err := json.Marshal(ex)
	require.NoError(t, err)

	var back Exchange
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, KindAnswer, back.Kind)
	require.JSONEq(t, raw, string(back.Payload.Raw()))
	require.Contains(t, string(data), `"kind":"answer"`)
}

func TestExchangeKind_Parse(t *testing.T) {
	k, err := ParseExchangeKind("answer")
	require.NoError(t, err)
	require.Equal(t, KindAnswer, k)

	_, err = ParseExchangeKind("question")
	require.Error(t, err)

	_, err = KindUnknown.MarshalText()
	require.Error(t, err)
}
