package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/coursebuddy/internal/intent"
	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/memory"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/prompts"
	"github.com/avvvet/coursebuddy/internal/subjects"
)

type fakeProvider struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "תשובה", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type fakeRanker struct {
	candidates []models.CourseCandidate
	err        error
	calls      int
}

func (f *fakeRanker) Rank(_ context.Context, _ *models.TeacherProfile) ([]models.CourseCandidate, error) {
	f.calls++
	return f.candidates, f.err
}

type failingCommitStore struct {
	*memory.Manager
}

func (s failingCommitStore) CommitTurn(context.Context, string, string, string, string, intent.Session) error {
	return errors.New("redis down")
}

type chatFixture struct {
	handler  *ChatHandler
	provider *fakeProvider
	ranker   *fakeRanker
	sessions *memory.Manager
}

func newChatFixture() *chatFixture {
	provider := &fakeProvider{}
	ranker := &fakeRanker{candidates: []models.CourseCandidate{
		{CourseName: "הוראת גאומטריה", CourseSummary: "כלים להוראה", Score: 0.9},
	}}
	sessions := memory.NewManager(memory.NewCacheStore(time.Minute), logger.Nop())
	return &chatFixture{
		handler:  NewChatHandler(provider, ranker, sessions, subjects.Default(), 3, logger.Nop()),
		provider: provider,
		ranker:   ranker,
		sessions: sessions,
	}
}

func chatRequest(message string) *models.ChatRequest {
	return &models.ChatRequest{
		SessionID: "s1",
		UserID:    "u1",
		Message:   message,
		Profile: models.TeacherProfile{
			Name:            "דנה",
			SubjectArea:     "מתמטיקה",
			SchoolType:      "יהודי",
			Language:        "עברית",
			EducationLevels: []string{"יסודי"},
		},
	}
}

func (f *chatFixture) respond(t *testing.T, message string) *models.ChatResponse {
	t.Helper()
	resp, err := f.handler.Respond(context.Background(), chatRequest(message))
	require.NoError(t, err)
	return resp
}

func (f *chatFixture) conversation(t *testing.T) intent.Session {
	t.Helper()
	conv, err := f.sessions.Conversation(context.Background(), "s1")
	require.NoError(t, err)
	return conv
}

func TestRespondRecommendation(t *testing.T) {
	f := newChatFixture()
	f.provider.replies = []string{"**מומלץ:** הוראת גאומטריה"}

	resp := f.respond(t, "תמליץ לי על קורס")

	assert.False(t, resp.IsError)
	assert.Equal(t, "מומלץ: הוראת גאומטריה", resp.Text)
	assert.Equal(t, string(intent.RequestRecommendation), resp.Intent)
	assert.Equal(t, string(intent.BranchRecommendation), resp.Branch)
	assert.Equal(t, string(intent.Recommendation), resp.State)
	assert.Equal(t, 1, f.ranker.calls)
	require.Len(t, f.provider.prompts, 1)
	assert.Contains(t, f.provider.prompts[0], "הוראת גאומטריה")
	assert.Contains(t, f.provider.prompts[0], "- שאלה: תמליץ לי על קורס")

	conv := f.conversation(t)
	assert.Equal(t, intent.Recommendation, conv.State)
	assert.Equal(t, resp.Text, conv.LastAssistantUtterance)
}

func TestRespondQuestionThenConfirmation(t *testing.T) {
	f := newChatFixture()

	resp := f.respond(t, "מה זה קורס חינוך מיוחד?")
	assert.Equal(t, string(intent.BranchQuestion), resp.Branch)
	assert.Equal(t, intent.AwaitingRecommendationConfirmation, f.conversation(t).State)

	resp = f.respond(t, "כן")
	assert.Equal(t, string(intent.Confirmation), resp.Intent)
	assert.Equal(t, string(intent.BranchRecommendation), resp.Branch)
	assert.Equal(t, intent.Recommendation, f.conversation(t).State)
	assert.Equal(t, 2, f.ranker.calls)

	// the second prompt carries the first turn
	require.Len(t, f.provider.prompts, 2)
	assert.Contains(t, f.provider.prompts[1], "User: מה זה קורס חינוך מיוחד?")
}

func TestRespondGeneralWithoutCollaborators(t *testing.T) {
	f := newChatFixture()

	resp := f.respond(t, "שלום")
	assert.False(t, resp.IsError)
	assert.Equal(t, prompts.GeneralReply, resp.Text)
	assert.Equal(t, string(intent.BranchGeneral), resp.Branch)
	assert.Equal(t, 0, f.ranker.calls)
	assert.Empty(t, f.provider.prompts)
	assert.Equal(t, intent.Session{State: intent.General, LastAssistantUtterance: prompts.GeneralReply}, f.conversation(t))

	// the canned reply invited a description, so anything now is a request
	resp = f.respond(t, "משהו על הוראה דיגיטלית")
	assert.Equal(t, string(intent.BranchRecommendation), resp.Branch)
	assert.Equal(t, 1, f.ranker.calls)
}

func TestRespondConfirmationAcknowledged(t *testing.T) {
	f := newChatFixture()
	f.provider.replies = []string{"הנה שלושה קורסים. האם תרצה שאמליץ על עוד?"}

	f.respond(t, "תמליץ לי על קורס")
	require.Equal(t, intent.Recommendation, f.conversation(t).State)

	resp := f.respond(t, "כן")
	assert.Equal(t, string(intent.BranchConfirmation), resp.Branch)
	assert.Equal(t, prompts.ConfirmationReply, resp.Text)
	assert.Equal(t, 1, f.ranker.calls)
	assert.Len(t, f.provider.prompts, 1)
	assert.Equal(t, intent.Session{State: intent.Recommendation, LastAssistantUtterance: prompts.ConfirmationReply}, f.conversation(t))
}

func TestRespondBareYesFallsBackToGeneral(t *testing.T) {
	f := newChatFixture()

	resp := f.respond(t, "כן")
	assert.Equal(t, string(intent.Confirmation), resp.Intent)
	assert.Equal(t, string(intent.BranchGeneral), resp.Branch)
	assert.Equal(t, prompts.GeneralReply, resp.Text)
}

func TestRespondCollaboratorFailureKeepsState(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		rankerErr   error
		wantText    string
		wantCode    string
	}{
		{
			name:        "quota",
			providerErr: errors.New("quota exceeded"),
			wantText:    prompts.MsgQuota,
			wantCode:    models.ErrorQuota,
		},
		{
			name:        "api key",
			providerErr: errors.New("API key not valid"),
			wantText:    prompts.MsgAPIKey,
			wantCode:    models.ErrorAPIKey,
		},
		{
			name:      "prediction unreachable",
			rankerErr: &llm.Error{Kind: llm.KindNetwork, Collaborator: "prediction", Message: "dial tcp: refused"},
			wantText:  prompts.MsgNetwork,
			wantCode:  models.ErrorNetwork,
		},
		{
			name:        "generic",
			providerErr: errors.New("boom"),
			wantText:    prompts.MsgGeneric,
			wantCode:    models.ErrorLLMFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture()
			f.respond(t, "מה זה קורס חינוך מיוחד?")
			before := f.conversation(t)

			f.provider.err = tt.providerErr
			f.ranker.err = tt.rankerErr

			resp := f.respond(t, "תמליץ לי על קורס")
			assert.True(t, resp.IsError)
			assert.Equal(t, tt.wantText, resp.Text)
			require.NotNil(t, resp.ErrorCode)
			assert.Equal(t, tt.wantCode, *resp.ErrorCode)

			assert.Equal(t, before, f.conversation(t))
			msgs, err := f.sessions.GetMessages(context.Background(), "s1")
			require.NoError(t, err)
			assert.Len(t, msgs, 2)
		})
	}
}

func TestRespondValidation(t *testing.T) {
	f := newChatFixture()

	req := chatRequest("תמליץ לי על קורס")
	req.Profile.SubjectArea = "מתמטיקה מתקדמת"
	resp, err := f.handler.Respond(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, prompts.MsgInvalidSubject, resp.Text)
	assert.Equal(t, models.ErrorInvalidRequest, *resp.ErrorCode)

	req = chatRequest("   ")
	resp, err = f.handler.Respond(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, prompts.MsgEmptyMessage, resp.Text)

	req = chatRequest("שלום")
	req.SessionID = ""
	resp, err = f.handler.Respond(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	assert.Equal(t, 0, f.ranker.calls)
}

func TestRespondCommitFailure(t *testing.T) {
	f := newChatFixture()
	h := NewChatHandler(f.provider, f.ranker, failingCommitStore{f.sessions}, subjects.Default(), 3, logger.Nop())

	resp, err := h.Respond(context.Background(), chatRequest("שלום"))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, models.ErrorStore, *resp.ErrorCode)
	assert.Equal(t, intent.NewSession(), f.conversation(t))
}

func TestStartAndReset(t *testing.T) {
	f := newChatFixture()

	start := f.handler.Start("דנה")
	_, err := uuid.Parse(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, prompts.Welcome("דנה"), start.Welcome)

	f.respond(t, "שלום")
	require.NoError(t, f.handler.Reset(context.Background(), "s1"))
	assert.Equal(t, intent.NewSession(), f.conversation(t))

	assert.Error(t, f.handler.Reset(context.Background(), ""))
}
