package intent

import (
	"fmt"
	"strings"
)

// State is the conversation phase of one chat session.
type State string

const (
	General                            State = "general"
	AwaitingRecommendationConfirmation State = "awaiting_recommendation_confirmation"
	Recommendation                     State = "recommendation"
)

// ParseState accepts the stored form of a State. An empty string is the
// initial General state.
func ParseState(s string) (State, error) {
	switch State(s) {
	case "", General:
		return General, nil
	case AwaitingRecommendationConfirmation, Recommendation:
		return State(s), nil
	}
	return General, fmt.Errorf("unknown conversation state %q", s)
}

// Branch is the response strategy chosen for a turn.
type Branch string

const (
	// BranchRecommendation fetches ranked courses and asks the LLM for
	// personalised recommendations.
	BranchRecommendation Branch = "recommendation"
	// BranchQuestion answers a question from the profile and candidate courses.
	BranchQuestion Branch = "question"
	// BranchConfirmation acknowledges a yes with a canned follow-up.
	BranchConfirmation Branch = "confirmation"
	// BranchGeneral asks the user to share more.
	BranchGeneral Branch = "general"
)

// NeedsCollaborators reports whether the branch calls the prediction and
// generative services.
func (b Branch) NeedsCollaborators() bool {
	return b == BranchRecommendation || b == BranchQuestion
}

// Markers looked for in the previous assistant utterance.
const (
	// LookingForMarker is "what are you looking for"; its presence means the
	// user was invited to describe their needs, so any reply is a request.
	LookingForMarker = "מה אתה מחפש"
	// OfferMarker is "would you like me to recommend".
	OfferMarker = "האם תרצה שאמליץ"
)

// Session is the classifier state owned by one chat session.
type Session struct {
	State                  State  `json:"state"`
	LastAssistantUtterance string `json:"last_assistant_utterance,omitempty"`
}

// NewSession returns the initial session state.
func NewSession() Session {
	return Session{State: General}
}

// Decision is the outcome of classifying one message. Nothing is committed
// until Advance is called with the produced reply.
type Decision struct {
	Intent Intent
	Branch Branch
	Next   State
}

// Classify detects the intent of message and selects the response branch
// for the given session. Branch order matters: the recommendation checks run
// before the confirmation-acknowledged check.
func Classify(message string, s Session) Decision {
	in := Detect(message)
	d := Decision{Intent: in}

	switch {
	case in == RequestRecommendation,
		strings.Contains(s.LastAssistantUtterance, LookingForMarker),
		in == Confirmation && s.State == AwaitingRecommendationConfirmation:
		d.Branch, d.Next = BranchRecommendation, Recommendation
	case in == Question:
		d.Branch, d.Next = BranchQuestion, AwaitingRecommendationConfirmation
	case in == Confirmation && strings.Contains(s.LastAssistantUtterance, OfferMarker):
		d.Branch, d.Next = BranchConfirmation, Recommendation
	default:
		d.Branch, d.Next = BranchGeneral, General
	}
	return d
}

// Advance commits a successful turn: the session moves to the decided state
// and remembers reply as the last assistant utterance.
func (s Session) Advance(d Decision, reply string) Session {
	return Session{
		State:                  d.Next,
		LastAssistantUtterance: reply,
	}
}
