package models

import (
	"encoding/json"
	"time"
)

// PreviousCourse is a course the teacher already took.
type PreviousCourse struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
}

// TeacherProfile is filled by the profile form before chatting. It travels
// inside ChatRequest, so it follows the chat API's snake_case keys.
type TeacherProfile struct {
	Name            string           `json:"name"`
	SubjectArea     string           `json:"subject_area"`
	SchoolType      string           `json:"school_type"`
	Language        string           `json:"language"`
	EducationLevels []string         `json:"education_levels"`
	PreviousCourses []PreviousCourse `json:"previous_courses"`
}

// HasLevel reports whether level is one of the profile's education levels.
func (p *TeacherProfile) HasLevel(level string) bool {
	for _, l := range p.EducationLevels {
		if l == level {
			return true
		}
	}
	return false
}

// PreviousCourseNames returns the names of the previous courses in order.
func (p *TeacherProfile) PreviousCourseNames() []string {
	names := make([]string, 0, len(p.PreviousCourses))
	for _, c := range p.PreviousCourses {
		names = append(names, c.CourseName)
	}
	return names
}

// ChatRequest is one user turn, over NATS or HTTP
type ChatRequest struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id,omitempty"`
	Message   string         `json:"message"`
	Profile   TeacherProfile `json:"profile"`
}

// ChatResponse is the assistant's reply to one turn
type ChatResponse struct {
	SessionID    string  `json:"session_id"`
	Text         string  `json:"text"`
	IsError      bool    `json:"is_error"`
	Intent       string  `json:"intent,omitempty"`
	Branch       string  `json:"branch,omitempty"`
	State        string  `json:"state,omitempty"`
	ErrorCode    *string `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// ChatStart opens a new chat session
type ChatStart struct {
	SessionID string `json:"session_id"`
	Welcome   string `json:"welcome"`
}

// SubjectRequest asks for autocomplete suggestions
type SubjectRequest struct {
	Query string `json:"query"`
}

// SubjectResponse carries ranked subject labels
type SubjectResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	Valid       bool     `json:"valid"`
}

// CatalogResponse lists the profile form options
type CatalogResponse struct {
	Subjects        []string `json:"subjects"`
	SchoolTypes     []string `json:"school_types"`
	Languages       []string `json:"languages"`
	EducationLevels []string `json:"education_levels"`
}

// CourseCandidate is one ranked course from the prediction service.
type CourseCandidate struct {
	CourseName    string  `json:"שם הקורס"`
	CourseSummary string  `json:"תקציר הקורס"`
	Score         float64 `json:"score"`
}

// PredictionRequest is the body the prediction service expects.
type PredictionRequest struct {
	Role              string `json:"role"`
	Sector            string `json:"sector"`
	Language          string `json:"language"`
	TeachesElementary int    `json:"teaches_elementary"`
	TeachesSecondary  int    `json:"teaches_secondary"`
}

// ChatMessage is one entry of a stored conversation transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// SurveyAnswers holds the satisfaction survey ratings (1..5).
type SurveyAnswers struct {
	OverallExperience int    `json:"overallExperience"`
	ResponseQuality   int    `json:"responseQuality"`
	Helpfulness       int    `json:"helpfulness"`
	Accuracy          int    `json:"accuracy"`
	Clarity           int    `json:"clarity"`
	EaseOfUse         int    `json:"easeOfUse"`
	ResponseSpeed     int    `json:"responseSpeed"`
	Design            int    `json:"design"`
	Personalization   int    `json:"personalization"`
	FutureUse         int    `json:"futureUse"`
	WouldRecommend    string `json:"wouldRecommend"`
}

// Complete reports whether every rating is answered and in range.
func (a *SurveyAnswers) Complete() bool {
	for _, r := range []int{
		a.OverallExperience, a.ResponseQuality, a.Helpfulness, a.Accuracy, a.Clarity,
		a.EaseOfUse, a.ResponseSpeed, a.Design, a.Personalization, a.FutureUse,
	} {
		if r < 1 || r > 5 {
			return false
		}
	}
	return a.WouldRecommend != ""
}

// Survey is either answered or skipped.
type Survey struct {
	Answers     *SurveyAnswers `json:"answers,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
	Skipped     bool           `json:"skipped,omitempty"`
	SkippedAt   string         `json:"skippedAt,omitempty"`
}

// UserInfo groups what the teacher entered before chatting.
type UserInfo struct {
	UserName      string          `json:"userName"`
	TeacherInfo   json.RawMessage `json:"teacherInfo,omitempty"`
	CourseRatings json.RawMessage `json:"courseRatings,omitempty"`
}

// SessionRecord is the archived result of a whole session. Archive types
// keep the camelCase keys of the stored session documents.
type SessionRecord struct {
	SessionDate         string        `json:"sessionDate"`
	SessionTime         string        `json:"sessionTime"`
	SessionDateTime     string        `json:"sessionDateTime"`
	UserInfo            UserInfo      `json:"userInfo"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
	Survey              Survey        `json:"survey"`
}

// ArchivedSession describes a stored session file.
type ArchivedSession struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// SaveSessionResponse answers a save-session call
type SaveSessionResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ListSessionsResponse answers a list-sessions call
type ListSessionsResponse struct {
	Success  bool              `json:"success"`
	Sessions []ArchivedSession `json:"sessions"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Error codes
const (
	ErrorInvalidRequest = "INVALID_REQUEST"
	ErrorAPIKey         = "LLM_API_KEY"
	ErrorQuota          = "LLM_QUOTA_EXCEEDED"
	ErrorNetwork        = "NETWORK_ERROR"
	ErrorLLMFailed      = "LLM_API_FAILED"
	ErrorStore          = "STORE_ERROR"
	ErrorParseError     = "PARSE_ERROR"
)
