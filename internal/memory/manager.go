package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"

	"github.com/avvvet/coursebuddy/internal/intent"
	"github.com/avvvet/coursebuddy/internal/logger"
)

// Manager owns per-session conversation state. The Store is the only
// source of truth; transcripts are rebuilt into a LangChainGo buffer on
// every read so replicas sharing a store always see the same history.
type Manager struct {
	store Store
	log   *logger.Logger
}

// NewManager creates a new memory manager
func NewManager(store Store, log *logger.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
	}
}

// Conversation returns the classifier session for sessionID.
func (m *Manager) Conversation(ctx context.Context, sessionID string) (intent.Session, error) {
	session, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return intent.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return session.Conversation, nil
}

// CommitTurn stores the advanced state with the user message and reply.
func (m *Manager) CommitTurn(ctx context.Context, sessionID, userID, userMessage, reply string, next intent.Session) error {
	now := time.Now()
	msgs := []Message{
		{Role: RoleUser, Content: userMessage, Timestamp: now},
		{Role: RoleAssistant, Content: reply, Timestamp: now},
	}

	if err := m.store.SaveTurn(ctx, sessionID, userID, next, msgs...); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}

	m.log.Debug("💾 Saved turn", "session_id", sessionID, "state", next.State)
	return nil
}

// buffer loads the stored transcript of a session into a fresh LangChainGo
// buffer.
func (m *Manager) buffer(ctx context.Context, sessionID string) (*memory.ConversationBuffer, error) {
	messages, err := m.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	mem := memory.NewConversationBuffer()
	for _, msg := range messages {
		var chatMsg llms.ChatMessage

		switch msg.Role {
		case RoleUser:
			chatMsg = llms.HumanChatMessage{Content: msg.Content}
		case RoleAssistant:
			chatMsg = llms.AIChatMessage{Content: msg.Content}
		default:
			m.log.Warn("⚠️ Unknown message role, skipping", "role", msg.Role, "session_id", sessionID)
			continue
		}

		if err := mem.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to memory: %w", err)
		}
	}

	return mem, nil
}

// FormattedHistory renders the last maxMessages messages of a session for a
// prompt, oldest first. Empty when there is no history or maxMessages <= 0.
func (m *Manager) FormattedHistory(ctx context.Context, sessionID string, maxMessages int) (string, error) {
	if maxMessages <= 0 {
		return "", nil
	}

	mem, err := m.buffer(ctx, sessionID)
	if err != nil {
		return "", err
	}

	messages, err := mem.ChatHistory.Messages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get messages: %w", err)
	}
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	var builder strings.Builder
	for _, msg := range messages {
		switch cm := msg.(type) {
		case llms.HumanChatMessage:
			builder.WriteString(fmt.Sprintf("User: %s\n", cm.Content))
		case llms.AIChatMessage:
			builder.WriteString(fmt.Sprintf("Assistant: %s\n", cm.Content))
		}
	}

	return builder.String(), nil
}

// GetMessages returns raw messages from the store
func (m *Manager) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	return m.store.GetMessages(ctx, sessionID)
}

// ClearSession removes a session from the store
func (m *Manager) ClearSession(ctx context.Context, sessionID string) error {
	if err := m.store.ClearSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.log.Info("🗑️ Cleared session", "session_id", sessionID)

	return nil
}

// Close closes the underlying store
func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
