// editor.go: Comment-preserving in-place file editor
//
// A save rewrites exactly one option's block in the config file: the old
// assignment line (and its continuation lines) is replaced by a timestamped
// modification stamp plus the new assignment, while every unrelated comment,
// blank line and option is preserved. The file is always re-serialized from
// the edited in-memory line sequence and written atomically, never patched
// incrementally.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// stampPrefix marks the comment line a save leaves above the rewritten
// assignment. A stamp from a prior save is replaced, never duplicated.
const stampPrefix = "### MODIFIED: "

type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineStamp
	lineAssign
	// lineOther covers continuation lines and anything else that does not
	// start a new recognized option
	lineOther
)

// fileLine is one classified line of the config file.
type fileLine struct {
	text string
	kind lineKind
	key  string // assignment key, only for lineAssign
}

// classifyLine types one raw line without altering it.
func classifyLine(text string) fileLine {
	if strings.HasPrefix(text, stampPrefix) {
		return fileLine{text: text, kind: lineStamp}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fileLine{text: text, kind: lineBlank}
	}
	if trimmed[0] == '#' || trimmed[0] == ';' {
		return fileLine{text: text, kind: lineComment}
	}

	// indented lines continue the previous assignment
	if text[0] == ' ' || text[0] == '\t' {
		return fileLine{text: text, kind: lineOther}
	}

	if key, _, ok := splitAssign(trimmed); ok {
		return fileLine{text: text, kind: lineAssign, key: key}
	}
	return fileLine{text: text, kind: lineOther}
}

// Editor performs line-level surgery on one flat config file.
type Editor struct {
	path string
}

// NewEditor creates an editor for the given file path.
func NewEditor(path string) *Editor {
	return &Editor{path: path}
}

// Apply replaces the assignment for name with a modification stamp followed
// by `name = raw`. The first active assignment line whose key matches is
// replaced along with its continuation lines; interleaved comments and blank
// lines up to the next option are kept in place. If the option has no line in
// the file, the block is appended at the end. The whole file is rewritten
// atomically.
func (e *Editor) Apply(name, raw, annotation string) error {
	var lines []string
	data, err := os.ReadFile(e.path)
	switch {
	case err == nil:
		lines = splitLines(string(data))
	case os.IsNotExist(err):
		lines = nil
	default:
		return errors.Wrap(err, ErrCodeIOError, "unable to read config file for save").
			WithContext("path", e.path)
	}

	block := []string{stampLine(annotation), name + " = " + raw}

	start := -1
	for i, line := range lines {
		fl := classifyLine(line)
		if fl.kind == lineAssign && fl.key == name {
			start = i
			break
		}
	}

	if start == -1 {
		lines = append(lines, block...)
	} else {
		// delete the assignment, then every following line that does not
		// start a new option and is not a kept comment or blank line
		lines = append(lines[:start], lines[start+1:]...)
		n := start
		for n < len(lines) {
			switch classifyLine(lines[n]).kind {
			case lineAssign:
				n = len(lines)
			case lineComment, lineStamp, lineBlank:
				n++
			default:
				lines = append(lines[:n], lines[n+1:]...)
			}
		}

		lines = append(lines[:start], append(append([]string{}, block...), lines[start:]...)...)

		// replace a modification stamp left by a prior save
		if start > 0 && classifyLine(lines[start-1]).kind == lineStamp {
			lines = append(lines[:start-1], lines[start:]...)
		}
	}

	return e.writeAtomic([]byte(strings.Join(lines, "\n") + "\n"))
}

// stampLine builds the modification stamp comment for the current time.
func stampLine(annotation string) string {
	s := stampPrefix + timecache.CachedTime().Format(time.ANSIC)
	if annotation != "" {
		s += " (" + annotation + ")"
	}
	return s
}

// splitLines splits file content into lines without the trailing empty
// element a final newline would produce.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// writeAtomic writes data via a temporary file in the same directory plus
// rename, so an interrupted save never leaves a corrupt config file.
func (e *Editor) writeAtomic(data []byte) error {
	dir := filepath.Dir(e.path)
	base := filepath.Base(e.path)
	tempPath := filepath.Join(dir, "."+base+".tmp."+fmt.Sprintf("%d", timecache.CachedTimeNano()))

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to write temp file").
			WithContext("path", tempPath)
	}

	if err := os.Rename(tempPath, e.path); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, ErrCodeIOError, "failed to rename temp file").
			WithContext("path", e.path)
	}

	return nil
}
