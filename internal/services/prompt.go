package services

import (
	"strconv"
	"strings"

	"github.com/atiaron/taskflow/internal/models"
)

const (
	defaultCommunicationStyle = "ידידותי וישיר"
	defaultTimePreferences    = "לא נקבעו"
	noPatternDetected         = "אין דפוס זוהה"

	// he-IL locale rendering of date and time.
	hebrewDateTimeLayout = "2.1.2006, 15:04:05"
)

// PromptContext is what the caller knows about the current chat request.
type PromptContext struct {
	UserName     string        `json:"userName,omitempty"`
	PendingTasks []models.Task `json:"pendingTasks,omitempty"`
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// BuildPersonalizedPrompt renders the system prompt for a chat request from
// whatever mem currently holds. It performs no I/O.
func (a *BehaviorAnalyzer) BuildPersonalizedPrompt(mem *PatternMemory, userInput string, pc PromptContext) string {
	var patterns models.PatternSet
	var prefs models.Preferences
	if mem != nil {
		patterns, _ = mem.Patterns()
		prefs, _ = mem.Preferences()
	}

	procrastination := noPatternDetected
	if len(patterns.ProcrastinationPatterns) > 0 {
		procrastination = strings.Join(patterns.ProcrastinationPatterns, ", ")
	}

	var b strings.Builder

	b.WriteString("\nאתה העוזר האישי של ")
	b.WriteString(orDefault(pc.UserName, a.defaultUserName))
	b.WriteString(".\n\n")

	b.WriteString("מה שאתה יודע עליו:\n")
	b.WriteString("- שעות פרודקטיביות: ")
	b.WriteString(orDefault(patterns.ProductiveHours, NoDataYet))
	b.WriteString("\n")
	b.WriteString("- סגנון תקשורת: ")
	b.WriteString(orDefault(prefs.CommunicationStyle, defaultCommunicationStyle))
	b.WriteString("\n")
	b.WriteString("- העדפות זמן: ")
	b.WriteString(orDefault(prefs.TimePreferences, defaultTimePreferences))
	b.WriteString("\n")
	b.WriteString("- משימות שנוטה לדחות: ")
	b.WriteString(procrastination)
	b.WriteString("\n\n")

	b.WriteString("הקשר נוכחי:\n")
	b.WriteString("- זמן: ")
	b.WriteString(a.now().In(a.loc).Format(hebrewDateTimeLayout))
	b.WriteString("\n")
	b.WriteString("- בקשה: \"")
	b.WriteString(userInput)
	b.WriteString("\"\n")
	b.WriteString("- משימות פתוחות: ")
	b.WriteString(strconv.Itoa(len(pc.PendingTasks)))
	b.WriteString("\n\n")

	b.WriteString("התנהג כמו עוזר אישי שמכיר אותו היטב. אל תהיה רובוט - היה אמיתי וחכם.\n")
	b.WriteString("אם הוא מבקש ליצור משימה, השתמש בפורמט: [CREATE_TASK:שם|תיאור|עדיפות]\n")

	return b.String()
}
