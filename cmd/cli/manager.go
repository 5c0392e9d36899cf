// Package cli provides the command-line interface for Hestia configuration files.
//
// The CLI operates directly on flat key=value files without requiring an
// option schema: it reads, edits and exports the raw file, and queries the
// persistent SQLite log sink. Schema-aware behavior (hooks, defaults,
// required options) belongs to the host process, not the CLI.
//
// Architecture:
// - Manager: CLI orchestration and command routing via the Orpheus framework
// - Handlers: individual command implementations
// - Utils: shared helpers for scalar typing and export rendering
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Manager provides CLI operations for Hestia configuration files.
// Built on top of the Orpheus framework for fast command routing.
type Manager struct {
	app *orpheus.App
}

// NewManager creates a new CLI manager with the full command tree wired.
func NewManager() *Manager {
	app := orpheus.New("hestia").
		SetDescription("Flat key=value configuration management with comment-preserving edits").
		SetVersion("1.0.0")

	manager := &Manager{
		app: app,
	}

	manager.setupConfigCommands()
	manager.setupLogCommands()

	return manager
}

// Run executes the CLI application with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupConfigCommands configures the 'config' command group for file
// operations: get, set, list, validate and export.
func (m *Manager) setupConfigCommands() {
	configCmd := orpheus.NewCommand("config", "Configuration file operations")

	// config get <file> <key>
	configCmd.Subcommand("get", "Get a configuration value", m.handleConfigGet)

	// config set <file> <key> <value> [--note=]
	setCmd := configCmd.Subcommand("set", "Set a configuration value in place", m.handleConfigSet)
	setCmd.AddFlag("note", "n", "", "Annotation recorded in the modification stamp")

	// config list <file> [--prefix=]
	listCmd := configCmd.Subcommand("list", "List configuration keys", m.handleConfigList)
	listCmd.AddFlag("prefix", "p", "", "Key prefix filter")

	// config validate <file>
	configCmd.Subcommand("validate", "Validate configuration file syntax", m.handleConfigValidate)

	// config export <file> [--format=yaml]
	exportCmd := configCmd.Subcommand("export", "Export configuration as a structured document", m.handleConfigExport)
	exportCmd.AddFlag("format", "f", "yaml", "Output format (yaml|json)")

	m.app.AddCommand(configCmd)
}

// setupLogCommands configures the 'log' command group for the persistent
// SQLite reload log.
func (m *Manager) setupLogCommands() {
	logCmd := orpheus.NewCommand("log", "Reload log database management")

	// log query <db> [--min=debug] [--limit=100]
	queryCmd := logCmd.Subcommand("query", "Query persisted reload messages", m.handleLogQuery)
	queryCmd.AddFlag("min", "m", "debug", "Minimum level (debug|info|warning|error|critical)")
	queryCmd.AddIntFlag("limit", "l", 100, "Maximum results")

	// log count <db> [--level=error]
	countCmd := logCmd.Subcommand("count", "Count persisted messages at a level", m.handleLogCount)
	countCmd.AddFlag("level", "", "error", "Level to count (debug|info|warning|error|critical)")

	m.app.AddCommand(logCmd)
}
