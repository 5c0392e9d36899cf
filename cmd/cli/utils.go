// Utility functions for the Hestia CLI
//
// Helpers for scalar auto-typing and export rendering shared by the
// command handlers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/hestia"
	"go.yaml.in/yaml/v3"
)

// parseScalar automatically parses a string value to the appropriate Go type.
// Supports: bool, int, float64, and strings with smart type detection.
func parseScalar(value string) interface{} {
	// Only explicit boolean strings count as booleans; "0" and "1" stay
	// numeric.
	lowerValue := strings.ToLower(value)
	if lowerValue == "true" || lowerValue == "false" {
		return lowerValue == "true"
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}

// typedTable converts a raw string table into an auto-typed document.
func typedTable(raw map[string]string) map[string]interface{} {
	table := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		table[key] = parseScalar(value)
	}
	return table
}

// renderExport marshals a document in the requested format.
func renderExport(table map[string]interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		out, err := yaml.Marshal(table)
		if err != nil {
			return nil, errors.Wrap(err, hestia.ErrCodeIOError, "failed to render YAML export")
		}
		return out, nil
	case "json":
		out, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, hestia.ErrCodeIOError, "failed to render JSON export")
		}
		return append(out, '\n'), nil
	default:
		return nil, errors.New(hestia.ErrCodeInvalidOption, fmt.Sprintf("unsupported export format: %s", format))
	}
}
