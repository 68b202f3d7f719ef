package intent

import (
	"strings"
)

// Intent is the classifier's judgment of what a user message is for.
type Intent string

const (
	RequestRecommendation Intent = "request_recommendation"
	Confirmation          Intent = "confirmation"
	Question              Intent = "question"
	Other                 Intent = "other"
)

var (
	// matched as substrings
	recommendationKeywords = []string{"עוד", "תמליץ", "המלצה", "קורס מתאים", "אני רוצה המלצה", "רוצה", "איזה קורס"}
	// matched against the whole message
	confirmationPhrases = []string{"אא", "כן", "בטח", "קדימה", "יאללה", "כן בבקשה"}
	// matched as substrings
	questionKeywords = []string{"האם", "?", "מה זה", "איך", "איפה", "מתי", "כמה", "מי", "תסבר", "מה", "למה"}
)

// Detect classifies message by ordered keyword checks: recommendation
// keywords, then exact confirmation phrases, then question keywords.
func Detect(message string) Intent {
	msg := strings.ToLower(strings.TrimSpace(message))

	switch {
	case containsAny(msg, recommendationKeywords):
		return RequestRecommendation
	case equalsAny(msg, confirmationPhrases):
		return Confirmation
	case containsAny(msg, questionKeywords):
		return Question
	default:
		return Other
	}
}

func containsAny(msg string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}

func equalsAny(msg string, phrases []string) bool {
	for _, p := range phrases {
		if msg == p {
			return true
		}
	}
	return false
}
