package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/avvvet/coursebuddy/internal/config"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/prompts"
)

// ChatService answers chat turns.
type ChatService interface {
	Start(name string) *models.ChatStart
	Respond(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error)
	Reset(ctx context.Context, sessionID string) error
}

// SubjectService answers subject autocomplete requests.
type SubjectService interface {
	Rank(request *models.SubjectRequest) *models.SubjectResponse
	Catalog() *models.CatalogResponse
}

type NATSTransport struct {
	conn     *nats.Conn
	config   *config.Config
	chat     ChatService
	subjects SubjectService
	log      *logger.Logger
	subs     []*nats.Subscription
}

func NewNATSTransport(cfg *config.Config, chat ChatService, subjects SubjectService, log *logger.Logger) (*NATSTransport, error) {
	// Connect to NATS
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("⚠️ NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("🔁 NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("📡 Connected to NATS server", "url", cfg.NatsURL)

	return newNATSTransport(conn, cfg, chat, subjects, log), nil
}

func newNATSTransport(conn *nats.Conn, cfg *config.Config, chat ChatService, subjects SubjectService, log *logger.Logger) *NATSTransport {
	return &NATSTransport{
		conn:     conn,
		config:   cfg,
		chat:     chat,
		subjects: subjects,
		log:      log,
	}
}

func (nt *NATSTransport) Start() error {
	routes := []struct {
		subject string
		handle  func([]byte) []byte
	}{
		{nt.config.NatsChatSubject, nt.processChat},
		{nt.config.NatsSubjectsSubject, nt.processSubjects},
	}

	for _, route := range routes {
		handle := route.handle
		sub, err := nt.conn.Subscribe(route.subject, func(msg *nats.Msg) {
			nt.reply(msg, handle(msg.Data))
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", route.subject, err)
		}
		nt.subs = append(nt.subs, sub)
		nt.log.Info("👂 Subscribed to subject", "subject", route.subject)
	}
	return nil
}

// processChat decodes a chat request, runs the turn and encodes the reply.
func (nt *NATSTransport) processChat(data []byte) []byte {
	var request models.ChatRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.log.Warn("Error parsing chat request", "error", err)
		return nt.encode(chatParseError(&request, err))
	}

	nt.log.Debug("Processing chat request", "session_id", request.SessionID)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	response, err := nt.chat.Respond(ctx, &request)
	if err != nil {
		nt.log.Error("Error processing chat request", "session_id", request.SessionID, "error", err)
		code, msg := models.ErrorLLMFailed, err.Error()
		response = &models.ChatResponse{
			SessionID:    request.SessionID,
			Text:         prompts.MsgGeneric,
			IsError:      true,
			ErrorCode:    &code,
			ErrorMessage: &msg,
		}
	}
	return nt.encode(response)
}

func (nt *NATSTransport) processSubjects(data []byte) []byte {
	var request models.SubjectRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.log.Warn("Error parsing subject request", "error", err)
		return nt.encode(map[string]string{
			"error_code":    models.ErrorParseError,
			"error_message": err.Error(),
		})
	}
	return nt.encode(nt.subjects.Rank(&request))
}

func chatParseError(request *models.ChatRequest, err error) *models.ChatResponse {
	code, msg := models.ErrorParseError, fmt.Sprintf("Invalid request format: %v", err)
	return &models.ChatResponse{
		SessionID:    request.SessionID,
		Text:         prompts.MsgGeneric,
		IsError:      true,
		ErrorCode:    &code,
		ErrorMessage: &msg,
	}
}

func (nt *NATSTransport) encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		nt.log.Error("Failed to marshal response", "error", err)
		return []byte(`{"is_error":true,"error_code":"` + models.ErrorParseError + `"}`)
	}
	return data
}

func (nt *NATSTransport) reply(msg *nats.Msg, data []byte) {
	if err := msg.Respond(data); err != nil {
		nt.log.Error("Failed to send response", "subject", msg.Subject, "error", err)
	}
}

func (nt *NATSTransport) Close() error {
	for _, sub := range nt.subs {
		if err := sub.Unsubscribe(); err != nil {
			nt.log.Warn("⚠️ Failed to unsubscribe", "subject", sub.Subject, "error", err)
		}
	}
	nt.subs = nil
	if nt.conn != nil {
		nt.conn.Close()
		nt.conn = nil
		nt.log.Info("NATS connection closed")
	}
	return nil
}
