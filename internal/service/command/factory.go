package command

import (
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
)

// NewCommands builds the chat commands. models may be nil when the provider
// cannot list its models.
func NewCommands(
	llm *config.LLMConfig,
	models core.ModelLister,
	store core.StructuredStore,
) []core.Command {
	return []core.Command{
		NewModelCommand(llm, models),
		NewHistoryCommand(store),
		NewRoutineCommand(store),
		NewForgetCommand(store),
	}
}
