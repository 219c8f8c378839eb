// Package ui holds the terminal styles shared by the CLI commands and the chat REPL.
package ui

import "github.com/charmbracelet/lipgloss"

// ANSI base colors only, so the palette follows the user's terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ReplyStyle frames bot replies in the REPL.
	ReplyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).PaddingLeft(2)
	// NoticeStyle is used for supportive fixed replies about flagged topics.
	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).PaddingLeft(2)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
