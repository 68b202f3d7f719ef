package memory

import (
	"context"
	"time"

	"github.com/avvvet/coursebuddy/internal/intent"
)

// Message represents a single message in a conversation
type Message struct {
	Role      string    `json:"role"`      // "user" or "assistant"
	Content   string    `json:"content"`   // The actual message text
	Timestamp time.Time `json:"timestamp"` // When the message was sent
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionData represents all data for a conversation session
type SessionData struct {
	SessionID    string         `json:"session_id"`
	UserID       string         `json:"user_id"`
	Messages     []Message      `json:"messages"`
	Conversation intent.Session `json:"conversation"`
	Metadata     Metadata       `json:"metadata"`
}

// Metadata contains session information
type Metadata struct {
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

// Store defines the interface for conversation storage.
// RedisStore backs the service, CacheStore keeps sessions in process.
type Store interface {
	// LoadSession loads a session, or an empty one in the General state
	LoadSession(ctx context.Context, sessionID string) (*SessionData, error)

	// SaveTurn stores the advanced conversation state together with the
	// turn's messages
	SaveTurn(ctx context.Context, sessionID, userID string, conv intent.Session, msgs ...Message) error

	// GetMessages retrieves all messages for a session
	GetMessages(ctx context.Context, sessionID string) ([]Message, error)

	// ClearSession removes a session from storage
	ClearSession(ctx context.Context, sessionID string) error
}

func newSession(sessionID string) *SessionData {
	now := time.Now()
	return &SessionData{
		SessionID:    sessionID,
		Messages:     []Message{},
		Conversation: intent.NewSession(),
		Metadata: Metadata{
			StartedAt:    now,
			LastActivity: now,
		},
	}
}

// applyTurn appends msgs and moves the session to conv.
func applyTurn(session *SessionData, userID string, conv intent.Session, msgs []Message) {
	if session.UserID == "" {
		session.UserID = userID
	}
	if len(session.Messages) == 0 && len(msgs) > 0 {
		session.Metadata.StartedAt = msgs[0].Timestamp
	}

	session.Messages = append(session.Messages, msgs...)
	session.Conversation = conv
	session.Metadata.LastActivity = time.Now()
	session.Metadata.MessageCount = len(session.Messages)
}

// normalize fills what older or hand-written records may lack.
func normalize(session *SessionData, sessionID string) (*SessionData, error) {
	if session.SessionID == "" {
		session.SessionID = sessionID
	}
	if session.Messages == nil {
		session.Messages = []Message{}
	}
	state, err := intent.ParseState(string(session.Conversation.State))
	if err != nil {
		return nil, err
	}
	session.Conversation.State = state
	return session, nil
}
