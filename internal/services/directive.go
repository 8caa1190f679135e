package services

import (
	"regexp"
	"strings"

	"github.com/atiaron/taskflow/internal/models"
)

// TaskDirective is a [CREATE_TASK:title|description|priority] instruction
// emitted by the assistant.
type TaskDirective struct {
	Title       string
	Description string
	Priority    models.Priority
}

var createTaskDirective = regexp.MustCompile(`\[CREATE_TASK:([^\]]*)\]`)

// ParseTaskDirectives extracts every create-task directive from reply.
// Directives with an empty title are skipped.
func ParseTaskDirectives(reply string) []TaskDirective {
	var out []TaskDirective
	for _, m := range createTaskDirective.FindAllStringSubmatch(reply, -1) {
		parts := strings.SplitN(m[1], "|", 3)
		d := TaskDirective{Title: strings.TrimSpace(parts[0]), Priority: models.PriorityMedium}
		if d.Title == "" {
			continue
		}
		if len(parts) > 1 {
			d.Description = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			d.Priority = models.ParsePriority(strings.TrimSpace(parts[2]))
		}
		out = append(out, d)
	}
	return out
}

// StripTaskDirectives removes directives so the reply can be shown to the user.
func StripTaskDirectives(reply string) string {
	return strings.TrimSpace(createTaskDirective.ReplaceAllString(reply, ""))
}
