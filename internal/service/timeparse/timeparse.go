// Package timeparse pulls clock times and (activity, time) pairs out of free text.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/carebot/internal/core"
)

var timeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// ExtractTime returns the first valid time token in text as zero padded "HH:MM".
// Candidates with an hour above 23, minutes above 59, or a 12-hour hour outside
// 1..12 are skipped.
func ExtractTime(text string) (string, bool) {
	for _, m := range timeRe.FindAllStringSubmatch(text, -1) {
		if t, ok := normalize(m[1], m[2], m[3]); ok {
			return t, true
		}
	}
	return "", false
}

func normalize(hourStr, minStr, period string) (string, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return "", false
	}

	minute := 0
	if minStr != "" {
		if minute, err = strconv.Atoi(minStr); err != nil {
			return "", false
		}
	}
	if minute > 59 {
		return "", false
	}

	switch strings.ToLower(period) {
	case "pm":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return "", false
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// activityKeywords maps trigger words to the canonical activity name stored in routines.
var activityKeywords = []struct {
	activity string
	words    []string
}{
	{"wake", []string{"wake", "woke", "get up", "got up"}},
	{"sleep", []string{"sleep", "bed", "slept"}},
	{"breakfast", []string{"breakfast"}},
	{"lunch", []string{"lunch"}},
	{"dinner", []string{"dinner", "supper"}},
	{"exercise", []string{"exercise", "workout", "gym", "run", "walk", "yoga"}},
	{"work", []string{"work", "office", "meeting"}},
	{"study", []string{"study", "class", "homework"}},
	{"meditation", []string{"meditate", "meditation"}},
	{"shower", []string{"shower", "bath"}},
}

var clauseSplitRe = regexp.MustCompile(`(?i)[,;.\n]|\band\b|\bthen\b`)

// ExtractActivities pairs activity keywords with a time in the same clause, e.g.
// "wake up at 7am, lunch at 12:30pm" yields wake=07:00 and lunch=12:30.
// A later mention of the same activity overrides an earlier one.
func ExtractActivities(text string) []core.ActivityTime {
	var out []core.ActivityTime
	index := make(map[string]int)

	for _, clause := range clauseSplitRe.Split(text, -1) {
		t, ok := ExtractTime(clause)
		if !ok {
			continue
		}
		activity, ok := matchActivity(clause)
		if !ok {
			continue
		}

		if i, seen := index[activity]; seen {
			out[i].Time = t
			continue
		}
		index[activity] = len(out)
		out = append(out, core.ActivityTime{Activity: activity, Time: t})
	}
	return out
}

func matchActivity(clause string) (string, bool) {
	lower := " " + strings.ToLower(clause) + " "
	for _, a := range activityKeywords {
		for _, w := range a.words {
			if containsWord(lower, w) {
				return a.activity, true
			}
		}
	}
	return "", false
}

// containsWord matches w as a word prefix so "running" hits "run" but "brunch" misses "run".
func containsWord(s, w string) bool {
	for i := strings.Index(s, w); i >= 0; {
		if i == 0 || !isLetter(s[i-1]) {
			return true
		}
		next := strings.Index(s[i+1:], w)
		if next < 0 {
			return false
		}
		i += next + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// HasActivity reports whether text mentions any known activity.
func HasActivity(text string) bool {
	_, ok := matchActivity(text)
	return ok
}
