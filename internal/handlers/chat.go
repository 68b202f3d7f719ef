package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avvvet/coursebuddy/internal/intent"
	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/prediction"
	"github.com/avvvet/coursebuddy/internal/prompts"
	"github.com/avvvet/coursebuddy/internal/subjects"
)

// SessionStore holds the per-session classifier state and transcript.
type SessionStore interface {
	Conversation(ctx context.Context, sessionID string) (intent.Session, error)
	CommitTurn(ctx context.Context, sessionID, userID, userMessage, reply string, next intent.Session) error
	FormattedHistory(ctx context.Context, sessionID string, maxMessages int) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type ChatHandler struct {
	provider     llm.Provider
	ranker       prediction.Ranker
	sessions     SessionStore
	catalog      *subjects.Catalog
	historyTurns int
	log          *logger.Logger
}

func NewChatHandler(
	provider llm.Provider,
	ranker prediction.Ranker,
	sessions SessionStore,
	catalog *subjects.Catalog,
	historyTurns int,
	log *logger.Logger,
) *ChatHandler {
	return &ChatHandler{
		provider:     provider,
		ranker:       ranker,
		sessions:     sessions,
		catalog:      catalog,
		historyTurns: historyTurns,
		log:          log,
	}
}

// Start opens a chat session with a welcome message. Nothing is stored
// until the first turn.
func (h *ChatHandler) Start(name string) *models.ChatStart {
	return &models.ChatStart{
		SessionID: uuid.NewString(),
		Welcome:   prompts.Welcome(name),
	}
}

// Respond runs one turn: classify, produce the branch's reply, then commit
// the new state. A failed turn leaves the session as it was.
func (h *ChatHandler) Respond(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error) {
	// Validate request
	if userMsg, err := h.validateRequest(request); err != nil {
		return h.createErrorResponse(request, models.ErrorInvalidRequest, err.Error(), userMsg), nil
	}

	session, err := h.sessions.Conversation(ctx, request.SessionID)
	if err != nil {
		h.log.Error("❌ Failed to load session", "session_id", request.SessionID, "error", err)
		return h.createErrorResponse(request, models.ErrorStore, err.Error(), prompts.MsgGeneric), nil
	}

	decision := intent.Classify(request.Message, session)
	log := h.log.With(
		"session_id", request.SessionID,
		"intent", decision.Intent,
		"branch", decision.Branch,
		"state", session.State,
	)
	log.Debug("🧠 Classified message")

	var reply string
	switch {
	case decision.Branch.NeedsCollaborators():
		reply, err = h.generate(ctx, request, decision.Branch)
		if err != nil {
			kind := llm.Classify(err)
			log.Warn("⚠️ Collaborator failed", "kind", kind, "error", err)
			return h.createErrorResponse(request, errorCode(kind), err.Error(), prompts.ErrorMessage(kind)), nil
		}
	case decision.Branch == intent.BranchConfirmation:
		reply = prompts.ConfirmationReply
	default:
		reply = prompts.GeneralReply
	}

	next := session.Advance(decision, reply)
	if err := h.sessions.CommitTurn(ctx, request.SessionID, request.UserID, request.Message, reply, next); err != nil {
		log.Error("❌ Failed to commit turn", "error", err)
		return h.createErrorResponse(request, models.ErrorStore, err.Error(), prompts.MsgGeneric), nil
	}

	log.Info("✅ Turn completed", "next_state", next.State)

	return &models.ChatResponse{
		SessionID: request.SessionID,
		Text:      reply,
		Intent:    string(decision.Intent),
		Branch:    string(decision.Branch),
		State:     string(next.State),
	}, nil
}

// Reset forgets a session's state and transcript.
func (h *ChatHandler) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	return h.sessions.ClearSession(ctx, sessionID)
}

// generate fetches ranked candidates and asks the provider for the branch's
// answer.
func (h *ChatHandler) generate(ctx context.Context, request *models.ChatRequest, branch intent.Branch) (string, error) {
	candidates, err := h.ranker.Rank(ctx, &request.Profile)
	if err != nil {
		return "", llm.Wrap("prediction", err)
	}

	history, err := h.sessions.FormattedHistory(ctx, request.SessionID, h.historyTurns*2)
	if err != nil {
		h.log.Warn("⚠️ History unavailable, continuing without it", "session_id", request.SessionID, "error", err)
		history = ""
	}

	var prompt string
	if branch == intent.BranchRecommendation {
		prompt = prompts.BuildRecommendationPrompt(&request.Profile, request.Message, candidates, history)
	} else {
		prompt = prompts.BuildQuestionPrompt(&request.Profile, request.Message, candidates, history)
	}

	h.log.Debug("📤 Sending prompt", "session_id", request.SessionID, "provider", h.provider.Name(), "candidates", len(candidates))

	text, err := h.provider.Generate(ctx, prompt)
	if err != nil {
		return "", llm.Wrap(h.provider.Name(), err)
	}

	return prompts.CleanResponse(text), nil
}

// validateRequest returns the user-facing text alongside the error.
func (h *ChatHandler) validateRequest(request *models.ChatRequest) (string, error) {
	if request.SessionID == "" {
		return prompts.MsgGeneric, fmt.Errorf("session_id is required")
	}
	if strings.TrimSpace(request.Message) == "" {
		return prompts.MsgEmptyMessage, fmt.Errorf("message is required")
	}
	if !h.catalog.Contains(request.Profile.SubjectArea) {
		return prompts.MsgInvalidSubject, fmt.Errorf("subject area %q is not in the catalog", request.Profile.SubjectArea)
	}
	return "", nil
}

func (h *ChatHandler) createErrorResponse(request *models.ChatRequest, errorCode, errorMessage, text string) *models.ChatResponse {
	return &models.ChatResponse{
		SessionID:    request.SessionID,
		Text:         text,
		IsError:      true,
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}
}

func errorCode(kind llm.ErrorKind) string {
	switch kind {
	case llm.KindAPIKey, llm.KindConfiguration:
		return models.ErrorAPIKey
	case llm.KindQuota:
		return models.ErrorQuota
	case llm.KindNetwork:
		return models.ErrorNetwork
	}
	return models.ErrorLLMFailed
}
