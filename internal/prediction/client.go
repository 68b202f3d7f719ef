package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/subjects"
)

// Ranker returns course candidates for a teacher profile, best first.
type Ranker interface {
	Rank(ctx context.Context, profile *models.TeacherProfile) ([]models.CourseCandidate, error)
}

// Client calls the hosted course prediction model.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RequestFor maps a profile to the prediction request body.
func RequestFor(profile *models.TeacherProfile) models.PredictionRequest {
	return models.PredictionRequest{
		Role:              profile.SubjectArea,
		Sector:            profile.SchoolType,
		Language:          profile.Language,
		TeachesElementary: flag(profile.HasLevel(subjects.LevelElementary)),
		TeachesSecondary:  flag(profile.HasLevel(subjects.LevelSecondary)),
	}
}

func (c *Client) Rank(ctx context.Context, profile *models.TeacherProfile) ([]models.CourseCandidate, error) {
	body, err := json.Marshal(RequestFor(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, llm.Wrap("prediction", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, llm.Wrap("prediction", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.Wrap("prediction", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.Error{
			Kind:         statusKind(resp.StatusCode),
			Collaborator: "prediction",
			Message:      fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200)),
		}
	}

	var candidates []models.CourseCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, &llm.Error{
			Kind:         llm.KindGeneric,
			Collaborator: "prediction",
			Message:      "malformed response",
			Err:          err,
		}
	}

	return candidates, nil
}

func statusKind(code int) llm.ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return llm.KindQuota
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return llm.KindNetwork
	}
	return llm.KindGeneric
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
