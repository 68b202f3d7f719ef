package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avvvet/coursebuddy/internal/models"
)

// ErrInvalidRecord marks a session body that cannot be archived.
var ErrInvalidRecord = errors.New("invalid session record")

// FileStore archives finished sessions as indented JSON files, one per
// session, named session_<user>_<unix millis>.json.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates dir if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the session body and returns the file name. The body is
// stored as sent, re-indented; it must decode as a session record and an
// answered survey must be complete.
func (s *FileStore) Save(body []byte) (string, error) {
	var record models.SessionRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if a := record.Survey.Answers; a != nil && !record.Survey.Skipped && !a.Complete() {
		return "", fmt.Errorf("%w: survey answers are incomplete", ErrInvalidRecord)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	user := sanitizeName(record.UserInfo.UserName)
	stamp := s.now().UnixMilli()

	// O_EXCL so two saves in the same millisecond never overwrite each other
	for attempt := 0; attempt < 100; attempt++ {
		filename := fmt.Sprintf("session_%s_%d.json", user, stamp+int64(attempt))
		f, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create session file: %w", err)
		}
		if _, err := f.Write(pretty.Bytes()); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write session file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close session file: %w", err)
		}
		return filename, nil
	}
	return "", fmt.Errorf("failed to pick a free file name for user %q", user)
}

// List returns the archived sessions, newest first.
func (s *FileStore) List() ([]models.ArchivedSession, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	sessions := make([]models.ArchivedSession, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		sessions = append(sessions, models.ArchivedSession{
			Filename:  entry.Name(),
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Read returns the stored body of one archived session.
func (s *FileStore) Read(filename string) ([]byte, error) {
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".json") {
		return nil, fmt.Errorf("%w: bad file name %q", ErrInvalidRecord, filename)
	}
	return os.ReadFile(filepath.Join(s.dir, filename))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r == '*', r == '?', r == '"',
			r == '<', r == '>', r == '|', r < 0x20:
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "unknown"
	}
	return name
}
