package prompts

import (
	"fmt"
	"strings"

	"github.com/avvvet/coursebuddy/internal/llm"
	"github.com/avvvet/coursebuddy/internal/models"
)

const RecommendationPrompt = `אתה עוזר חכם להמלצות קורסים למורים. עליך לכתוב את התשובה בעברית בלבד, בשפה טבעית, מקצועית וברורה.

פרופיל המורה:
%s- שאלה: %s
%s
להלן הקורסים המתאימים ביותר לפי מודל החיזוי:
%s
הנחיות:
1. תן המלצות מותאמות אישית למורה.
2. הסבר בשני משפטים למה כל קורס מתאים לפי תקציר הקורס והמידע על המורה.
3. כתיבה בעברית מקצועית וברורה.
4. הימנע מלהציע קורסים שהשם שלהם מופיע ב %s
`

const QuestionPrompt = `המשתמש שאל שאלה:
"%s"

בהנתן פרופיל המורה:
%s%s
ולהלן קורסים אפשריים הקשורים לשאלה:
%s
ענה על השאלה בעברית מקצועית וברורה.
התשובה צריכה להיות ישירה, ללא הרחבות מיותרות וללא תיאורים כלליים.
התשובה צריכה להתבסס על פרופיל המורה ועל המידע לגבי הקורסים.
`

// ConfirmationReply follows a yes to a recommendation offer. It invites the
// user to describe what they are looking for.
const ConfirmationReply = "מעולה! כדי שאוכל להתאים לך קורסים באמת רלוונטיים - תספר לי קצת מה אתה מחפש. מה היית רוצה לשפר או ללמוד בקורס?"

// GeneralReply asks the user to share their interests.
const GeneralReply = "כדי שאוכל להמליץ לך בצורה מדויקת - ספר לי קצת מה אתה מחפש, מה מעניין אותך או במה היית רוצה להתפתח כמורה"

const (
	NoPreviousCourses = "לא צוינו קורסים קודמים"
	NotSpecified      = "לא צויין"
	NoCandidates      = "לא נמצאו קורסים מתאימים במודל החיזוי."
)

// Localized turn-level error messages.
const (
	MsgAPIKey  = "שגיאה במפתח API. בדוק את ההגדרות."
	MsgQuota   = "חריגה ממכסת השימוש ב-API."
	MsgNetwork = "שגיאת רשת. בדוק את החיבור."
	MsgGeneric = "נכשל ביצירת תגובה. אנא נסה שוב."

	MsgInvalidSubject = "אנא בחרו מקצוע מהרשימה המוצעת"
	MsgEmptyMessage   = "אנא כתבו הודעה."
)

// ErrorMessage returns the user-facing text for a failed turn.
func ErrorMessage(kind llm.ErrorKind) string {
	switch kind {
	case llm.KindAPIKey, llm.KindConfiguration:
		return MsgAPIKey
	case llm.KindQuota:
		return MsgQuota
	case llm.KindNetwork:
		return MsgNetwork
	}
	return MsgGeneric
}

// Welcome greets a teacher at the start of a chat.
func Welcome(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "משתמש"
	}
	return fmt.Sprintf("שלום %s! אני העוזר שלך להמלצות קורסים. איך אני יכול לעזור לך היום?", name)
}

// BuildRecommendationPrompt asks for personalised recommendations among the
// candidates.
func BuildRecommendationPrompt(profile *models.TeacherProfile, message string, candidates []models.CourseCandidate, history string) string {
	return fmt.Sprintf(RecommendationPrompt,
		buildProfileSection(profile),
		message,
		buildHistorySection(history),
		buildCandidatesSection(candidates),
		previousCoursesText(profile),
	)
}

// BuildQuestionPrompt asks for a direct answer grounded in the profile and
// the candidates.
func BuildQuestionPrompt(profile *models.TeacherProfile, message string, candidates []models.CourseCandidate, history string) string {
	return fmt.Sprintf(QuestionPrompt,
		message,
		buildProfileSection(profile),
		buildHistorySection(history),
		buildCandidatesSection(candidates),
	)
}

func buildProfileSection(profile *models.TeacherProfile) string {
	levels := NotSpecified
	if len(profile.EducationLevels) > 0 {
		levels = strings.Join(profile.EducationLevels, ", ")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("- שם: %s\n", profile.Name))
	builder.WriteString(fmt.Sprintf("- מקצוע הוראה: %s\n", profile.SubjectArea))
	builder.WriteString(fmt.Sprintf("- מגזר: %s\n", profile.SchoolType))
	builder.WriteString(fmt.Sprintf("- שלב חינוך: %s.\n", levels))
	builder.WriteString(fmt.Sprintf("- שפת בית הספר: %s\n", profile.Language))
	builder.WriteString(fmt.Sprintf("- קורסים שהמורה השתתף בהם בעבר: %s\n", previousCoursesText(profile)))
	return builder.String()
}

func buildHistorySection(history string) string {
	if strings.TrimSpace(history) == "" {
		return ""
	}
	return fmt.Sprintf("\nהשיחה עד כה:\n%s", history)
}

func buildCandidatesSection(candidates []models.CourseCandidate) string {
	if len(candidates) == 0 {
		return NoCandidates + "\n"
	}

	var builder strings.Builder
	for i, c := range candidates {
		builder.WriteString(fmt.Sprintf("%d. שם הקורס: %s\n", i+1, c.CourseName))
		builder.WriteString(fmt.Sprintf("   • תקציר הקורס: %s\n", c.CourseSummary))
		builder.WriteString(fmt.Sprintf("   • ציון התאמה: %.1f%%\n", c.Score*100))
	}
	return builder.String()
}

func previousCoursesText(profile *models.TeacherProfile) string {
	names := profile.PreviousCourseNames()
	if len(names) == 0 {
		return NoPreviousCourses
	}
	return strings.Join(names, ", ")
}

// CleanResponse strips markdown emphasis the chat window cannot render.
func CleanResponse(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
}
