package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/coursebuddy/internal/intent"
	"github.com/avvvet/coursebuddy/internal/logger"
)

func newTestManager() (*Manager, *CacheStore) {
	store := NewCacheStore(time.Minute)
	return NewManager(store, logger.Nop()), store
}

func TestCacheStoreNewSession(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(time.Minute)

	session, err := store.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, intent.General, session.Conversation.State)
	assert.Empty(t, session.Messages)
}

func TestCacheStoreSaveTurn(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(time.Minute)

	conv := intent.Session{State: intent.Recommendation, LastAssistantUtterance: "הנה"}
	msgs := []Message{
		{Role: RoleUser, Content: "תמליץ", Timestamp: time.Now()},
		{Role: RoleAssistant, Content: "הנה", Timestamp: time.Now()},
	}
	require.NoError(t, store.SaveTurn(ctx, "s1", "u1", conv, msgs...))

	session, err := store.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, conv, session.Conversation)
	assert.Equal(t, 2, session.Metadata.MessageCount)

	// returned records are copies
	session.Messages[0].Content = "changed"
	got, err := store.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "תמליץ", got[0].Content)

	require.NoError(t, store.ClearSession(ctx, "s1"))
	got, err = store.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(20 * time.Millisecond)
	require.NoError(t, store.SaveTurn(ctx, "s1", "u1", intent.Session{State: intent.Recommendation}))

	time.Sleep(50 * time.Millisecond)

	session, err := store.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, intent.General, session.Conversation.State)
}

func TestManagerCommitTurn(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	conv, err := m.Conversation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, intent.NewSession(), conv)

	next := intent.Session{State: intent.AwaitingRecommendationConfirmation, LastAssistantUtterance: "תשובה"}
	require.NoError(t, m.CommitTurn(ctx, "s1", "u1", "מה זה?", "תשובה", next))

	conv, err = m.Conversation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, next, conv)

	history, err := m.FormattedHistory(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Equal(t, "User: מה זה?\nAssistant: תשובה\n", history)

	msgs, err := m.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestManagerHistoryWindow(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	for _, turn := range []string{"1", "2", "3"} {
		require.NoError(t, m.CommitTurn(ctx, "s1", "u1", "q"+turn, "a"+turn, intent.NewSession()))
	}

	history, err := m.FormattedHistory(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, "User: q3\nAssistant: a3\n", history)

	history, err = m.FormattedHistory(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestManagersShareStore(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(time.Minute)
	first := NewManager(store, logger.Nop())
	second := NewManager(store, logger.Nop())

	require.NoError(t, first.CommitTurn(ctx, "s1", "u1", "q1", "a1", intent.NewSession()))

	history, err := first.FormattedHistory(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Equal(t, "User: q1\nAssistant: a1\n", history)

	require.NoError(t, second.CommitTurn(ctx, "s1", "u1", "q2", "a2", intent.NewSession()))

	// first already rendered the session once and must still see the turn
	// committed through second
	for _, m := range []*Manager{first, second} {
		history, err = m.FormattedHistory(ctx, "s1", 10)
		require.NoError(t, err)
		assert.Equal(t, "User: q1\nAssistant: a1\nUser: q2\nAssistant: a2\n", history)
	}

	require.NoError(t, second.ClearSession(ctx, "s1"))

	history, err = first.FormattedHistory(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestManagerClearSession(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()
	require.NoError(t, m.CommitTurn(ctx, "s1", "u1", "שלום", "היי", intent.Session{State: intent.Recommendation}))

	require.NoError(t, m.ClearSession(ctx, "s1"))

	msgs, err := m.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	conv, err := m.Conversation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, intent.General, conv.State)
	assert.NoError(t, m.Close())
}

func TestRedisStoreConnectFailures(t *testing.T) {
	_, err := NewRedisStore("not a url", time.Minute)
	assert.Error(t, err)

	_, err = NewRedisStore("redis://127.0.0.1:1/0", time.Minute)
	assert.Error(t, err)
}
