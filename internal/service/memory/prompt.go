package memory

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/carebot/internal/core"
)

const (
	NoRoutine  = "No routine found"
	NoPastData = "No past data yet"
)

const defaultPersona = `You are CareBot, a warm and patient companion for people with ADHD.
Keep answers short and concrete. Encourage small steps and celebrate progress.
Never diagnose and never lecture. Refer to the user's routine when it helps.`

var instructions = map[core.Intent]string{
	core.IntentGreeting: `The user just greeted you. Answer with one short, friendly greeting and ask how their day is going.`,
	core.IntentRoutineRequest: `You are planning the user's day.
1. Use every activity with a time the user mentioned, and the known routine.
2. Start at the wake-up time and continue in one-hour steps until sleep time. If either is unknown, ask for it.
3. Fill the gaps with healthy activities: movement, rest, meals, focused work, something fun.
4. Return ONLY an HTML table with two columns, Time and Activity.`,
	core.IntentEmotionalQuery: `Based on the past conversations and the routine, suggest possible reasons why the user might be feeling this way.
Offer one or two gentle, practical suggestions.`,
	core.IntentGeneralChat: `Respond supportively. Break tasks into small chunks, offer motivational reinforcement,
and refer to the routine when appropriate.`,
}

// SysPrompt turns a context bundle into generator messages. The persona can be
// overridden by a file in the runtime directory.
type SysPrompt struct {
	personaPath string
}

func NewSysPrompt(personaPath string) *SysPrompt {
	return &SysPrompt{personaPath: personaPath}
}

func (p *SysPrompt) persona() string {
	if p.personaPath == "" {
		return defaultPersona
	}
	content, err := os.ReadFile(p.personaPath)
	if err != nil || strings.TrimSpace(string(content)) == "" {
		return defaultPersona
	}
	return string(content)
}

func (p *SysPrompt) Build(b core.ContextBundle) []core.Message {
	messages := []core.Message{{Role: core.RoleSystem, Content: p.persona()}}

	if ins, ok := instructions[b.Intent]; ok {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: ins})
	}

	if b.Intent == core.IntentGreeting {
		return append(messages, core.Message{Role: core.RoleUser, Content: b.Message})
	}

	return append(messages, core.Message{Role: core.RoleUser, Content: renderContext(b)})
}

func renderContext(b core.ContextBundle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User Message: %q\n", b.Message)

	sb.WriteString("\n### User Routine\n")
	if len(b.Routine) == 0 {
		sb.WriteString(NoRoutine + "\n")
	} else {
		sb.WriteString("Date: " + b.Routine[0].Date + "\n")
		for _, r := range b.Routine {
			fmt.Fprintf(&sb, "- %s %s\n", r.TimeOfDay, r.Activity)
		}
	}

	if len(b.CachedActivities) > 0 {
		sb.WriteString("\n### Mentioned This Session\n")
		for _, a := range b.CachedActivities {
			fmt.Fprintf(&sb, "- %s %s\n", a.Time, a.Activity)
		}
	}

	sb.WriteString("\n### Related Past Conversations\n")
	if len(b.PastMessages) == 0 {
		sb.WriteString(NoPastData + "\n")
	} else {
		for _, m := range b.PastMessages {
			fmt.Fprintf(&sb, "- %s: %s\n", m.Record.CreatedAt.Format("2006-01-02 15:04"), m.Record.Text)
		}
	}

	if len(b.RecentHistory) > 0 {
		sb.WriteString("\n### Recent Messages\n")
		for _, h := range b.RecentHistory {
			fmt.Fprintf(&sb, "- %s\n", h.Message)
		}
	}

	if notes := routineNotes(b); len(notes) > 0 {
		sb.WriteString("\n### Routine Notes\n")
		for _, n := range notes {
			sb.WriteString("- " + n + "\n")
		}
	}

	return sb.String()
}

var mealWords = []string{"breakfast", "lunch", "dinner", "meal"}

// routineNotes are simple observations about the routine that might explain low energy.
func routineNotes(b core.ContextBundle) []string {
	var notes []string

	times := make(map[string]string, len(b.Routine)+len(b.CachedActivities))
	for _, r := range b.Routine {
		times[r.Activity] = r.TimeOfDay
	}
	for _, a := range b.CachedActivities {
		times[a.Activity] = a.Time
	}

	// Sleep between 01:00 and noon counts as late.
	if t, ok := times["sleep"]; ok && t >= "01:00" && t < "12:00" {
		notes = append(notes, "You might be feeling tired because of late sleep.")
	}

	lower := strings.ToLower(b.Message)
	if strings.Contains(lower, "skip") {
		for _, w := range mealWords {
			if strings.Contains(lower, w) {
				notes = append(notes, "Skipping meals can drain your energy.")
				break
			}
		}
	}

	if len(times) > 0 {
		if _, ok := times["exercise"]; !ok {
			notes = append(notes, "No movement today! A short stretch could help.")
		}
	}

	return notes
}
