package transport

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/avvvet/coursebuddy/internal/archive"
	"github.com/avvvet/coursebuddy/internal/models"
)

type fakeChat struct {
	mu       sync.Mutex
	requests []models.ChatRequest
	response *models.ChatResponse
	err      error
	resetErr error
	resets   []string
}

func (f *fakeChat) Start(name string) *models.ChatStart {
	return &models.ChatStart{SessionID: "new-session", Welcome: "שלום " + name}
}

func (f *fakeChat) Respond(_ context.Context, request *models.ChatRequest) (*models.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *request)
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &models.ChatResponse{SessionID: request.SessionID, Text: "תשובה", State: "general"}, nil
}

func (f *fakeChat) Reset(_ context.Context, sessionID string) error {
	f.resets = append(f.resets, sessionID)
	return f.resetErr
}

type fakeSubjects struct{}

func (fakeSubjects) Rank(request *models.SubjectRequest) *models.SubjectResponse {
	return &models.SubjectResponse{
		Query:       request.Query,
		Suggestions: []string{"מתמטיקה"},
		Valid:       request.Query == "מתמטיקה",
	}
}

func (fakeSubjects) Catalog() *models.CatalogResponse {
	return &models.CatalogResponse{Subjects: []string{"מתמטיקה"}}
}

type fakeArchive struct {
	files   map[string][]byte
	saved   [][]byte
	saveErr error
	list    []models.ArchivedSession
	listErr error
}

func (f *fakeArchive) Save(body []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, body)
	return "session_test_1.json", nil
}

func (f *fakeArchive) List() ([]models.ArchivedSession, error) {
	return f.list, f.listErr
}

func (f *fakeArchive) Read(filename string) ([]byte, error) {
	if strings.Contains(filename, "..") {
		return nil, archive.ErrInvalidRecord
	}
	data, ok := f.files[filename]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

var errInvalid = errors.Join(archive.ErrInvalidRecord, errors.New("survey answers are incomplete"))
