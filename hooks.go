// hooks.go: Built-in parse and validate hooks
//
// Concrete hook implementations for the common option shapes: strict
// booleans, integers, log levels, semicolon-delimited room lists, and
// black/white authorization rules.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// ParseBool accepts the case-insensitive literals "true" and "false" only.
func ParseBool(name, raw string) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, errors.New(ErrCodeParseError, "not a boolean literal: "+raw).
		WithContext("option", name)
}

// ParseInt parses a base-10 integer.
func ParseInt(name, raw string) (interface{}, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeParseError, "not an integer: "+raw).
			WithContext("option", name)
	}
	return n, nil
}

// ParseLogLevel maps a level name (debug, info, warning, error, critical) to
// its ordinal severity.
func ParseLogLevel(name, raw string) (interface{}, error) {
	level, err := ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return level, nil
}

// ParseList splits a comma-delimited list, dropping whitespace and embedded
// newlines from multi-line values.
func ParseList(name, raw string) (interface{}, error) {
	var out []string
	for _, item := range splitStrip(strings.ReplaceAll(raw, "\n", ""), ",") {
		if item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// Room describes one chat room to join, grouped under its service key.
// Nick and Pass are optional; a nil Pass means no password.
type Room struct {
	Name string
	Nick string
	Pass *Secret
}

// ParseRooms parses `service,room[,nick[,password]]` entries delimited by
// semicolons into a map from service to its rooms, preserving entry order
// within each service. Empty entries are skipped; a missing service or room
// fails the whole option. Passwords are wrapped so they never appear in logs
// or exports.
func ParseRooms(name, raw string) (interface{}, error) {
	rooms := make(map[string][]Room)
	for _, entry := range splitStrip(strings.ReplaceAll(raw, "\n", ""), ";") {
		if entry == "" {
			continue
		}

		params := splitStrip(entry, ",")
		if len(params) < 2 || params[0] == "" || params[1] == "" {
			return nil, errors.New(ErrCodeParseError, "room entry needs service and room: "+entry).
				WithContext("option", name)
		}

		room := Room{Name: params[1]}
		if len(params) > 2 && params[2] != "" {
			room.Nick = params[2]
		}
		if len(params) > 3 && params[3] != "" {
			room.Pass = NewSecret(params[3])
		}

		service := params[0]
		rooms[service] = append(rooms[service], room)
	}
	return rooms, nil
}

// Rule polarities. Rules are matched first-match-wins by the authorization
// consumer, so order is significant.
const (
	PolarityAllow = "allow"
	PolarityDeny  = "deny"
)

// Rule is one (polarity, user-pattern, command-pattern) authorization tuple.
type Rule struct {
	Polarity string
	User     string
	Command  string
}

// BWRulesHook builds the parse hook for a black/white rule option. Each
// semicolon-delimited entry is `polarity user-list cmd-list` with the lists
// comma-delimited; an entry expands to the Cartesian product of its users and
// commands. Expanded rules are appended to a copy of defaults, so the shared
// default list is never mutated in place.
func BWRulesHook(defaults []Rule) ParseFunc {
	return func(name, raw string) (interface{}, error) {
		rules := make([]Rule, len(defaults))
		copy(rules, defaults)

		for _, entry := range splitStrip(strings.ReplaceAll(raw, "\n", ""), ";") {
			if entry == "" {
				continue
			}

			fields := strings.Fields(entry)
			if len(fields) != 3 {
				return nil, errors.New(ErrCodeParseError, "rule entry needs polarity, users, commands: "+entry).
					WithContext("option", name)
			}

			polarity := fields[0]
			for _, user := range splitStrip(fields[1], ",") {
				for _, cmd := range splitStrip(fields[2], ",") {
					rules = append(rules, Rule{Polarity: polarity, User: user, Command: cmd})
				}
			}
		}
		return rules, nil
	}
}

// ValidateBWRules rejects any rule whose polarity is not allow or deny.
func ValidateBWRules(value interface{}) bool {
	rules, ok := value.([]Rule)
	if !ok {
		return false
	}
	for _, rule := range rules {
		if rule.Polarity != PolarityAllow && rule.Polarity != PolarityDeny {
			return false
		}
	}
	return true
}

// splitStrip splits on sep and trims whitespace from each part, keeping
// empty parts so callers can decide whether to skip them.
func splitStrip(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
