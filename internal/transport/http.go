package transport

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avvvet/coursebuddy/internal/archive"
	"github.com/avvvet/coursebuddy/internal/logger"
	"github.com/avvvet/coursebuddy/internal/models"
)

// SessionArchive stores finished sessions.
type SessionArchive interface {
	Save(body []byte) (string, error)
	List() ([]models.ArchivedSession, error)
	Read(filename string) ([]byte, error)
}

// MaxSessionBytes caps the body of a save-session request.
const MaxSessionBytes = 10 << 20

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

type HTTPServer struct {
	server          *http.Server
	maxSessionBytes int64
	chat            ChatService
	subjects        SubjectService
	archive         SessionArchive
	log             *logger.Logger
}

func NewHTTPServer(addr string, origins []string, chat ChatService, subjects SubjectService, sessions SessionArchive, log *logger.Logger) *HTTPServer {
	s := &HTTPServer{
		maxSessionBytes: MaxSessionBytes,
		chat:            chat,
		subjects:        subjects,
		archive:         sessions,
		log:             log,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(origins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the gin engine with every route mounted.
func (s *HTTPServer) Router(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := router.Group("/api")
	{
		api.GET("/subjects", s.rankSubjects)
		api.GET("/catalog", s.catalog)

		api.POST("/chat/start", s.startChat)
		api.POST("/chat", s.respond)
		api.DELETE("/chat/:session", s.resetChat)

		api.POST("/save-session", s.saveSession)
		api.GET("/sessions", s.listSessions)
		api.GET("/sessions/:filename", s.readSession)
	}

	return router
}

func (s *HTTPServer) Start() error {
	s.log.Info("🌐 HTTP server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *HTTPServer) rankSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.subjects.Rank(&models.SubjectRequest{Query: c.Query("q")}))
}

func (s *HTTPServer) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.subjects.Catalog())
}

type startRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) startChat(c *gin.Context) {
	var req startRequest
	// the body is optional
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, models.ErrorParseError, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.chat.Start(req.Name))
}

func (s *HTTPServer) respond(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, models.ErrorParseError, err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.chat.Respond(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, models.ErrorLLMFailed, err)
		return
	}

	status := http.StatusOK
	if resp.ErrorCode != nil && *resp.ErrorCode == models.ErrorInvalidRequest {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

func (s *HTTPServer) resetChat(c *gin.Context) {
	if err := s.chat.Reset(c.Request.Context(), c.Param("session")); err != nil {
		RespondError(c, http.StatusInternalServerError, models.ErrorStore, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) saveSession(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxSessionBytes)
	body, err := c.GetRawData()
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.sessionSaveFailed(c, status, err)
		return
	}

	filename, err := s.archive.Save(body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, archive.ErrInvalidRecord) {
			status = http.StatusBadRequest
		}
		s.sessionSaveFailed(c, status, err)
		return
	}

	s.log.Info("💾 Session saved", "filename", filename)
	c.JSON(http.StatusOK, models.SaveSessionResponse{
		Success:  true,
		Message:  "Session saved successfully",
		Filename: filename,
	})
}

func (s *HTTPServer) sessionSaveFailed(c *gin.Context, status int, err error) {
	s.log.Error("❌ Error saving session", "error", err)
	c.JSON(status, models.SaveSessionResponse{
		Success: false,
		Message: "Failed to save session",
		Error:   err.Error(),
	})
}

func (s *HTTPServer) listSessions(c *gin.Context) {
	sessions, err := s.archive.List()
	if err != nil {
		s.log.Error("❌ Error reading sessions", "error", err)
		c.JSON(http.StatusInternalServerError, models.ListSessionsResponse{
			Success: false,
			Message: "Failed to read sessions",
			Error:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ListSessionsResponse{Success: true, Sessions: sessions})
}

func (s *HTTPServer) readSession(c *gin.Context) {
	data, err := s.archive.Read(c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrInvalidRecord):
			RespondError(c, http.StatusBadRequest, models.ErrorInvalidRequest, err)
		case errors.Is(err, fs.ErrNotExist):
			RespondError(c, http.StatusNotFound, models.ErrorInvalidRequest, errors.New("session not found"))
		default:
			s.log.Error("❌ Error reading session", "error", err)
			RespondError(c, http.StatusInternalServerError, models.ErrorStore, err)
		}
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
