// reader.go: Raw flat-file reader
//
// The config format is one `key = value` (or `key: value`) per line with no
// real sections. To reuse an ordinary ini-style section grammar, the reader
// wraps the whole file in a single synthetic section before parsing; options
// found inside any real section header are reported and excluded.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"os"
	"strings"

	"github.com/agilira/go-errors"
)

// implicitSection is the synthetic section wrapped around the whole file.
const implicitSection = "hestia"

// ReadRawFile reads a flat config file into a name-to-raw-string map. The
// second return value lists real section headers whose contents were ignored.
func ReadRawFile(path string) (map[string]string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, ErrCodeReadError, "unable to read config file").
			WithContext("path", path)
	}
	values, ignored, err := parseFlat(data)
	if err != nil {
		return nil, nil, err
	}
	return values, ignored, nil
}

// readRaw returns the raw file values for a reload. Read or parse failures
// never propagate: they yield an empty map plus a critical log entry, so the
// reload proceeds on defaults alone.
func (c *Config) readRaw() map[string]string {
	values, ignored, err := ReadRawFile(c.path)
	if err != nil {
		c.log.Logf(LevelCritical, "unable to read/parse config file: %v", err)
		return map[string]string{}
	}
	for _, section := range ignored {
		c.log.Logf(LevelError, "ignoring section %q in config file", section)
	}
	return values
}

// parseFlat injects the implicit section header and runs the section grammar,
// keeping only options from the implicit section.
func parseFlat(data []byte) (map[string]string, []string, error) {
	src := "[" + implicitSection + "]\n" + string(data)
	sections, order, err := parseSections(src)
	if err != nil {
		return nil, nil, err
	}

	var ignored []string
	for _, name := range order {
		if name != implicitSection {
			ignored = append(ignored, name)
		}
	}
	return sections[implicitSection], ignored, nil
}

// parseSections is a plain ini-style grammar: `[name]` headers, `key = value`
// and `key: value` assignments, `#`/`;` comments, and indented continuation
// lines appended to the previous assignment. Anything else is a parse error.
func parseSections(src string) (map[string]map[string]string, []string, error) {
	sections := make(map[string]map[string]string)
	var order []string

	current := ""
	lastKey := ""

	for n, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == ';' {
			lastKey = ""
			continue
		}

		// section header
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			current = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if _, seen := sections[current]; !seen {
				sections[current] = make(map[string]string)
				order = append(order, current)
			}
			lastKey = ""
			continue
		}

		// continuation: indented line extending the previous value
		if line != trimmed && (line[0] == ' ' || line[0] == '\t') {
			if current == "" || lastKey == "" {
				return nil, nil, errors.New(ErrCodeReadError,
					fmt.Sprintf("line %d: continuation without preceding assignment", n))
			}
			sections[current][lastKey] += "\n" + trimmed
			continue
		}

		key, value, ok := splitAssign(trimmed)
		if !ok || current == "" {
			return nil, nil, errors.New(ErrCodeReadError,
				fmt.Sprintf("line %d: not a key/value assignment: %q", n, trimmed))
		}
		sections[current][key] = value
		lastKey = key
	}

	return sections, order, nil
}

// splitAssign splits one assignment line into key and value. Both `=` and `:`
// separators are accepted; a ` ;` sequence starts an inline comment and must
// come after the separator for the line to count as an assignment.
func splitAssign(line string) (string, string, bool) {
	sep := strings.IndexAny(line, "=:")
	if sep <= 0 {
		return "", "", false
	}
	if com := strings.Index(line, " ;"); com != -1 && com < sep {
		return "", "", false
	}

	key := strings.TrimSpace(line[:sep])
	value := strings.TrimSpace(line[sep+1:])
	if com := strings.Index(value, " ;"); com != -1 {
		value = strings.TrimSpace(value[:com])
	}
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
