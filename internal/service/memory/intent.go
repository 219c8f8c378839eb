package memory

import (
	"strings"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/service/timeparse"
)

var routineMarkers = []string{"routine", "schedule", "my day plan"}

var emotionalMarkers = []string{
	"i feel",
	"i'm feeling",
	"im feeling",
	"i am feeling",
	"why do i feel",
	"my mood",
}

var acknowledgments = []string{
	"i'm okay now",
	"im okay now",
	"i am okay now",
	"i'm ok now",
	"i'm fine now",
	"i am fine now",
	"i'm better",
	"i am better",
	"feeling better",
	"i'm good now",
	"all good now",
	"it's resolved",
}

// classifyIntent picks the normal-path handler. Greeting, flag and severity
// checks have already run by the time this is called.
func classifyIntent(message string) core.Intent {
	lower := strings.ToLower(message)

	for _, m := range routineMarkers {
		if strings.Contains(lower, m) {
			return core.IntentRoutineRequest
		}
	}
	if len(timeparse.ExtractActivities(message)) > 0 {
		return core.IntentRoutineRequest
	}

	for _, m := range emotionalMarkers {
		if strings.Contains(lower, m) {
			return core.IntentEmotionalQuery
		}
	}
	return core.IntentGeneralChat
}

// isAcknowledgment reports whether the owner signals a flagged issue is behind them.
func isAcknowledgment(message string) bool {
	lower := strings.ToLower(strings.ReplaceAll(message, "’", "'"))
	for _, a := range acknowledgments {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}
