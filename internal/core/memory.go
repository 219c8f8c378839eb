package core

import (
	"strings"
	"time"
)

// MemoryRecord is one stored message embedding. Records are never mutated.
type MemoryRecord struct {
	ID        string
	Seq       int64
	OwnerID   string
	Text      string
	Vector    []float32
	CreatedAt time.Time
}

// RecordHandle identifies a record returned by VectorStore.Add.
type RecordHandle struct {
	ID  string
	Seq int64
}

type Match struct {
	Record   MemoryRecord
	Distance float32
}

// RoutineEntry is unique on (OwnerID, Date, Activity).
type RoutineEntry struct {
	OwnerID   string `json:"user_id"`
	Activity  string `json:"activity"`
	TimeOfDay string `json:"time"`
	Date      string `json:"date"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}

// FlaggedIssue is the most recent serious topic raised by an owner.
type FlaggedIssue struct {
	OwnerID   string    `json:"user_id"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Keyword   string    `json:"keyword"`
	FlaggedAt time.Time `json:"flagged_at"`
}

const maxTopicRunes = 80

// Topic is the phrase used when referring back to the issue: the original message,
// shortened, or the matched keyword when no message was kept.
func (f FlaggedIssue) Topic() string {
	msg := strings.TrimSpace(f.Message)
	if msg == "" {
		return f.Keyword
	}
	if r := []rune(msg); len(r) > maxTopicRunes {
		return string(r[:maxTopicRunes]) + "…"
	}
	return msg
}

// ActivityTime is an (activity, HH:MM) pair extracted from a message.
type ActivityTime struct {
	Activity string `json:"activity"`
	Time     string `json:"time"`
}

// SeverityTag is the result of classifying a message. The zero value means not serious.
type SeverityTag struct {
	Category string `json:"category,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
}

func (t SeverityTag) Serious() bool {
	return t.Category != ""
}

type Intent int

const (
	IntentGeneralChat Intent = iota
	IntentGreeting
	IntentFlaggedFollowUp
	IntentRoutineRequest
	IntentEmotionalQuery
	IntentSeriousIssue
	IntentEmpty
)

var intentNames = map[Intent]string{
	IntentGeneralChat:     "general_chat",
	IntentGreeting:        "greeting",
	IntentFlaggedFollowUp: "flagged_follow_up",
	IntentRoutineRequest:  "routine_request",
	IntentEmotionalQuery:  "emotional_query",
	IntentSeriousIssue:    "serious_issue",
	IntentEmpty:           "empty",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Intent) UnmarshalText(b []byte) error {
	name := strings.TrimSpace(string(b))
	for k, v := range intentNames {
		if v == name {
			*i = k
			return nil
		}
	}
	*i = IntentGeneralChat
	return nil
}

// ContextBundle is everything handed to the generator for one turn.
type ContextBundle struct {
	OwnerID          string
	Message          string
	Intent           Intent
	PastMessages     []Match
	Routine          []RoutineEntry
	RecentHistory    []HistoryEntry
	CachedActivities []ActivityTime
	FlaggedIssue     *FlaggedIssue
	Severity         SeverityTag
}
