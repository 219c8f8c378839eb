package core

import "context"

// CmdRouter handles slash commands typed into a chat transport.
type CmdRouter interface {
	Execute(ctx context.Context, ownerID, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, ownerID string, args []string) (string, error)
}
