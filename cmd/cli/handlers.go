// Command handlers for the Hestia CLI
//
// This file contains all command handler implementations for the
// Orpheus-powered CLI. Handlers operate on the raw key=value file and on
// the SQLite log sink; they never instantiate a schema.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/hestia"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// handleConfigGet prints the raw value stored under a key.
func (m *Manager) handleConfigGet(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	key := ctx.GetArg(1)

	raw, _, err := hestia.ReadRawFile(filePath)
	if err != nil {
		return errors.Wrap(err, hestia.ErrCodeReadError, "failed to load configuration")
	}

	value, ok := raw[key]
	if !ok {
		return errors.New(hestia.ErrCodeUnknownOption, fmt.Sprintf("key '%s' not found", key))
	}

	fmt.Printf("%s\n", value)
	return nil
}

// handleConfigSet rewrites a single option block in place, preserving every
// unrelated line, and stamps the edit with the current time and an optional
// note.
func (m *Manager) handleConfigSet(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	key := ctx.GetArg(1)
	value := ctx.GetArg(2)
	note := ctx.GetFlagString("note")

	if key == "" {
		return errors.New(hestia.ErrCodeInvalidOption, "key cannot be empty")
	}

	editor := hestia.NewEditor(filePath)
	if err := editor.Apply(key, value, note); err != nil {
		return errors.Wrap(err, hestia.ErrCodeIOError, "failed to save value")
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, filePath)
	return nil
}

// handleConfigList lists keys with their raw values, sorted, with optional
// prefix filtering.
func (m *Manager) handleConfigList(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	prefix := ctx.GetFlagString("prefix")

	raw, _, err := hestia.ReadRawFile(filePath)
	if err != nil {
		return errors.Wrap(err, hestia.ErrCodeReadError, "failed to load configuration")
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		if prefix != "" {
			fmt.Printf("No keys found with prefix '%s'\n", prefix)
		} else {
			fmt.Println("No configuration keys found")
		}
		return nil
	}

	fmt.Printf("Configuration keys in %s:\n", filePath)
	for _, key := range keys {
		fmt.Printf("  %s = %s\n", key, raw[key])
	}

	return nil
}

// handleConfigValidate parses the file and reports syntax problems and any
// sections the engine would ignore.
func (m *Manager) handleConfigValidate(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)

	raw, ignored, err := hestia.ReadRawFile(filePath)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		return err
	}

	fmt.Printf("Valid configuration: %s (%d keys)\n", filePath, len(raw))
	for _, section := range ignored {
		fmt.Printf("  warning: section [%s] would be ignored\n", section)
	}

	return nil
}

// handleConfigExport renders the file as a YAML or JSON document with
// scalar values auto-typed.
func (m *Manager) handleConfigExport(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	format := ctx.GetFlagString("format")

	raw, _, err := hestia.ReadRawFile(filePath)
	if err != nil {
		return errors.Wrap(err, hestia.ErrCodeReadError, "failed to load configuration")
	}

	out, err := renderExport(typedTable(raw), format)
	if err != nil {
		return err
	}

	fmt.Print(string(out))
	return nil
}

// handleLogQuery prints persisted reload messages, newest first.
func (m *Manager) handleLogQuery(ctx *orpheus.Context) error {
	dbPath := ctx.GetArg(0)
	limit := ctx.GetFlagInt("limit")

	min, err := hestia.ParseLevel(ctx.GetFlagString("min"))
	if err != nil {
		return err
	}

	sink, err := hestia.NewSQLiteSink(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	msgs, err := sink.Query(min, limit)
	if err != nil {
		return err
	}

	if len(msgs) == 0 {
		fmt.Println("No messages found")
		return nil
	}

	for _, msg := range msgs {
		fmt.Printf("%s [%s] %s\n", msg.Time.Format(time.RFC3339), msg.Level, msg.Text)
	}

	return nil
}

// handleLogCount prints the number of persisted messages at one level.
func (m *Manager) handleLogCount(ctx *orpheus.Context) error {
	dbPath := ctx.GetArg(0)

	level, err := hestia.ParseLevel(ctx.GetFlagString("level"))
	if err != nil {
		return err
	}

	sink, err := hestia.NewSQLiteSink(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	n, err := sink.Count(level)
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", n)
	return nil
}
