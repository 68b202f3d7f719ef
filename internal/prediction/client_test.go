package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/models"
)

func testProfile() *models.TeacherProfile {
	return &models.TeacherProfile{
		Name:            "דנה",
		SubjectArea:     "מתמטיקה",
		SchoolType:      "יהודי",
		Language:        "עברית",
		EducationLevels: []string{"ממלכתי", "על יסודי"},
	}
}

func TestRequestFor(t *testing.T) {
	req := RequestFor(testProfile())
	assert.Equal(t, models.PredictionRequest{
		Role:              "מתמטיקה",
		Sector:            "יהודי",
		Language:          "עברית",
		TeachesElementary: 0,
		TeachesSecondary:  1,
	}, req)

	p := testProfile()
	p.EducationLevels = []string{"יסודי"}
	req = RequestFor(p)
	assert.Equal(t, 1, req.TeachesElementary)
	assert.Equal(t, 0, req.TeachesSecondary)
}

func TestClientRank(t *testing.T) {
	var got models.PredictionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"שם הקורס":"הוראת גאומטריה","תקציר הקורס":"כלים להוראה","score":0.87}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	candidates, err := c.Rank(context.Background(), testProfile())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "הוראת גאומטריה", candidates[0].CourseName)
	assert.Equal(t, "כלים להוראה", candidates[0].CourseSummary)
	assert.InDelta(t, 0.87, candidates[0].Score, 1e-9)
	assert.Equal(t, 1, got.TeachesSecondary)
}

func TestClientRankFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    llm.ErrorKind
	}{
		{
			name:    "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			want:    llm.KindQuota,
		},
		{
			name:    "unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    llm.KindNetwork,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			want:    llm.KindGeneric,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"detail":"oops"}`)) },
			want:    llm.KindGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Rank(context.Background(), testProfile())
			require.Error(t, err)
			assert.Equal(t, tt.want, llm.Classify(err))
		})
	}
}

func TestClientRankUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Rank(context.Background(), testProfile())
	require.Error(t, err)
	assert.Equal(t, llm.KindNetwork, llm.Classify(err))
}
