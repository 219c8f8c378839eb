package core

const (
	AppName       = "CareBot"
	UserAgent     = "CareBot/0.1"
	RepositoryURL = "https://github.com/sandevgo/carebot"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultOwnerID is used when an inbound request carries no user id.
const DefaultOwnerID = "123"

// ReplyUnavailable is shown instead of a raw error when a turn could not be stored.
const ReplyUnavailable = "Sorry, I couldn't keep track of that just now. Please try again in a moment. 💙"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one inbound chat turn.
type Request struct {
	OwnerID string `json:"user_id"`
	Message string `json:"message"`
}

type Reply struct {
	OwnerID string `json:"user_id"`
	Intent  Intent `json:"intent"`
	Text    string `json:"response"`
}
