package transport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/coursebuddy/internal/config"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/prompts"
)

func newTestNATS(chat *fakeChat) *NATSTransport {
	cfg := &config.Config{NatsTimeout: time.Second}
	return newNATSTransport(nil, cfg, chat, fakeSubjects{}, logger.Nop())
}

func TestProcessChat(t *testing.T) {
	chat := &fakeChat{}
	nt := newTestNATS(chat)

	data := nt.processChat([]byte(`{"session_id":"s1","message":"שלום"}`))

	var got models.ChatResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "תשובה", got.Text)
	assert.False(t, got.IsError)
	require.Len(t, chat.requests, 1)
}

func TestProcessChatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		code string
	}{
		{name: "malformed body", body: `not json`, code: models.ErrorParseError},
		{name: "handler error", body: `{"session_id":"s1","message":"x"}`, err: errors.New("boom"), code: models.ErrorLLMFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt := newTestNATS(&fakeChat{err: tt.err})

			var got models.ChatResponse
			require.NoError(t, json.Unmarshal(nt.processChat([]byte(tt.body)), &got))
			assert.True(t, got.IsError)
			require.NotNil(t, got.ErrorCode)
			assert.Equal(t, tt.code, *got.ErrorCode)
			assert.Equal(t, prompts.MsgGeneric, got.Text)
		})
	}
}

func TestProcessSubjects(t *testing.T) {
	nt := newTestNATS(&fakeChat{})

	var got models.SubjectResponse
	require.NoError(t, json.Unmarshal(nt.processSubjects([]byte(`{"query":"מתמטיקה"}`)), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, []string{"מתמטיקה"}, got.Suggestions)

	var failed map[string]string
	require.NoError(t, json.Unmarshal(nt.processSubjects([]byte(`[`)), &failed))
	assert.Equal(t, models.ErrorParseError, failed["error_code"])
}

func TestCloseWithoutConnection(t *testing.T) {
	nt := newTestNATS(&fakeChat{})
	assert.NoError(t, nt.Close())
}
