package agent

import (
	"regexp"
	"strings"
)

// taskPatterns are tried in order; the first match wins. The single capture
// group is the thing to be reminded about.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)remind me (?:to |about |of )?(.+)`),
	regexp.MustCompile(`(?i)don'?t forget (?:to |about )?(.+)`),
	regexp.MustCompile(`(?i)\bi(?: plan| am planning|'m planning| intend) to (.+)`),
	regexp.MustCompile(`提醒我(.+)`),
	regexp.MustCompile(`别忘了(.+)`),
	regexp.MustCompile(`我打算(.+)`),
}

const trailingPunct = " \t.!?,;:。！？，；…"

// ExtractTask returns the task text found in msg, or "" if msg carries no
// task intent.
func ExtractTask(msg string) string {
	for _, re := range taskPatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		if task := strings.TrimRight(strings.TrimSpace(m[1]), trailingPunct); task != "" {
			return task
		}
	}
	return ""
}
