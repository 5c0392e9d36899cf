// hestia: Declarative, extensible configuration engine
//
// Philosophy:
// - Explicit schema composition: components register options, the engine merges
// - Per-option failure isolation: a bad value never aborts a reload
// - Comment-preserving persistence: single-option saves rewrite one block only
// - Deferred logging until the host attaches a real sink
//
// Example Usage:
//   cfg, err := hestia.New("data/bot.conf")
//   cfg.Register(hestia.Option{
//       Name:    "recon_wait",
//       Default: 60,
//       Parse:   hestia.ParseInt,
//   }, "core")
//
//   switch cfg.Reload() {
//   case hestia.ReloadFail:
//       // a required option is missing
//   }
//   wait := cfg.GetInt("recon_wait")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
)

// Error codes for hestia operations
const (
	ErrCodeInvalidOption   = "HESTIA_INVALID_OPTION"
	ErrCodeDuplicateOption = "HESTIA_DUPLICATE_OPTION"
	ErrCodeRegistryFrozen  = "HESTIA_REGISTRY_FROZEN"
	ErrCodeUnknownOption   = "HESTIA_UNKNOWN_OPTION"
	ErrCodeReadError       = "HESTIA_READ_ERROR"
	ErrCodeParseError      = "HESTIA_PARSE_ERROR"
	ErrCodeValidateError   = "HESTIA_VALIDATE_ERROR"
	ErrCodePostError       = "HESTIA_POST_ERROR"
	ErrCodeSaveRejected    = "HESTIA_SAVE_REJECTED"
	ErrCodeIOError         = "HESTIA_IO_ERROR"
	ErrCodeProtocolError   = "HESTIA_PROTOCOL_ERROR"
	ErrCodeSinkError       = "HESTIA_SINK_ERROR"
)

// Level is the severity of a deferred log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// levelNames maps the names accepted by ParseLevel and the log-level hook.
var levelNames = map[string]Level{
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warning":  LevelWarning,
	"error":    LevelError,
	"critical": LevelCritical,
}

// ParseLevel maps a level name to its ordinal severity.
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LevelDebug, errors.New(ErrCodeParseError, "unknown log level: "+name)
	}
	return level, nil
}

// Result classifies the outcome of a reload, most severe first.
type Result int

const (
	// ReloadFail means at least one required option has no usable value.
	ReloadFail Result = iota

	// ReloadSuccess means no warnings or errors of any kind were logged.
	ReloadSuccess

	// ReloadErrors means the table is usable but some values were dropped:
	// ignored sections, parse/validate/post failures, or similar.
	ReloadErrors
)

func (r Result) String() string {
	switch r {
	case ReloadFail:
		return "FAIL"
	case ReloadSuccess:
		return "SUCCESS"
	case ReloadErrors:
		return "ERRORS"
	default:
		return "UNKNOWN"
	}
}

// Config is the option registry and reload engine for one flat config file.
//
// Lifecycle: components register options after New, the registration window
// closes when the first Reload (or Save) runs, and the live option table is
// rebuilt wholesale on every reload. The engine is single-threaded by design:
// no locking is provided around Reload/Save, and a save's read-back followed
// by write-back is not one critical section, so concurrent external edits of
// the file between the two are a documented caveat. Callers that need
// concurrency must serialize access externally.
type Config struct {
	path   string
	schema *schema
	editor *Editor
	log    *DeferredLog

	// live option table, replaced atomically at the end of each reload
	opts map[string]interface{}

	// registration window closes on first reload
	frozen bool

	// optional overlays applied between file values and the pipeline
	envPrefix string
	flags     *flashflags.FlagSet
}

// New creates a configuration engine tied to the given file path. The path
// must be creatable and writable; the file itself may not exist yet (a fully
// commented-out default file is generated on first reload).
func New(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New(ErrCodeIOError, "config file path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "invalid config file path").
			WithContext("path", path)
	}

	if err := probeWritable(abs); err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "config file path is not writable").
			WithContext("path", abs)
	}

	return &Config{
		path:      abs,
		schema:    newSchema(),
		editor:    NewEditor(abs),
		log:       NewDeferredLog(),
		envPrefix: "HESTIA_",
	}, nil
}

// probeWritable verifies the path can be opened for writing, creating and
// removing a probe file when it does not exist yet.
func probeWritable(path string) error {
	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		return f.Close()
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// Path returns the absolute path of the underlying config file.
func (c *Config) Path() string {
	return c.path
}

// Register adds one option to the schema table. It fails if the registration
// window has closed or if the name is already taken; duplicate conflicts are
// logged critical and identify both namespaces.
func (c *Config) Register(opt Option, namespace string) error {
	if c.frozen {
		return errors.New(ErrCodeRegistryFrozen, "registration window closed by first reload").
			WithContext("option", opt.Name)
	}
	if opt.Name == "" {
		return errors.New(ErrCodeInvalidOption, "option name cannot be empty").
			WithContext("namespace", namespace)
	}
	if _, dup := c.schema.lookup(opt.Name); dup {
		first := c.schema.owner[opt.Name]
		c.log.Logf(LevelCritical, "duplicate option %q from %q and %q", opt.Name, first, namespace)
		return errors.New(ErrCodeDuplicateOption, "option already registered").
			WithContext("option", opt.Name).
			WithContext("first_namespace", first).
			WithContext("second_namespace", namespace)
	}
	c.schema.add(opt, namespace)
	return nil
}

// RegisterMany registers each option, continuing past individual failures so
// one misbehaving contributor does not block the rest. It reports whether
// every registration succeeded.
func (c *Config) RegisterMany(opts []Option, namespace string) bool {
	ok := true
	for _, opt := range opts {
		if err := c.Register(opt, namespace); err != nil {
			ok = false
		}
	}
	return ok
}

// Defaults returns the full name-to-default map in registration order
// (map iteration order aside, the Names order is authoritative).
func (c *Config) Defaults() map[string]interface{} {
	return c.schema.defaults()
}

// Names returns the registered option names in registration order.
func (c *Config) Names() []string {
	return c.schema.names()
}

// Get returns the current typed value of an option, or its default if no
// reload has run yet. Unregistered names yield nil.
func (c *Config) Get(name string) interface{} {
	if c.opts != nil {
		return c.opts[name]
	}
	opt, ok := c.schema.lookup(name)
	if !ok {
		return nil
	}
	return opt.Default
}

// GetString returns an option's value as a string, or "" on type mismatch.
func (c *Config) GetString(name string) string {
	s, _ := c.Get(name).(string)
	return s
}

// GetInt returns an option's value as an int, or 0 on type mismatch.
func (c *Config) GetInt(name string) int {
	n, _ := c.Get(name).(int)
	return n
}

// GetBool returns an option's value as a bool, or false on type mismatch.
func (c *Config) GetBool(name string) bool {
	b, _ := c.Get(name).(bool)
	return b
}

// GetLevel returns an option's value as a log level, or LevelInfo on
// type mismatch.
func (c *Config) GetLevel(name string) Level {
	if l, ok := c.Get(name).(Level); ok {
		return l
	}
	return LevelInfo
}

// Reload rebuilds the entire option table: defaults, then file values run
// through each option's hook pipeline, then a second post pass over the
// merged table, then the required-option check. The new table replaces the
// live one only after every step completes. All failures are absorbed into
// the deferred log and reflected only in the returned Result.
func (c *Config) Reload() Result {
	c.frozen = true
	mark := c.log.Len()

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		if werr := c.WriteDefaultFile(); werr != nil {
			c.log.Logf(LevelCritical, "unable to create default config file: %v", werr)
		}
	}

	table := c.schema.defaults()

	raw := c.readRaw()
	c.applyEnvOverlay(raw)
	c.applyFlagOverlay(raw)

	// unknown options are informational, never an error
	for name := range raw {
		if _, ok := c.schema.lookup(name); !ok {
			c.log.Logf(LevelInfo, "unknown config option %q", name)
			delete(raw, name)
		}
	}

	// per-option pipeline in registration order; survivors overwrite defaults
	for _, opt := range c.schema.options() {
		rawValue, present := raw[opt.Name]
		if !present {
			continue
		}
		if value, ok := c.runPipeline(opt, rawValue, table); ok {
			table[opt.Name] = value
		}
	}

	// post hooks run again over the merged table so they can react to
	// sibling values that themselves came from defaults
	c.runPostPass(table)

	missing := false
	for _, opt := range c.schema.options() {
		if opt.Required && isEmptyValue(table[opt.Name]) {
			c.log.Logf(LevelCritical, "missing required option %q", opt.Name)
			missing = true
		}
	}

	c.opts = table

	if missing {
		return ReloadFail
	}
	for _, msg := range c.log.since(mark) {
		if msg.Level >= LevelWarning {
			return ReloadErrors
		}
	}
	return ReloadSuccess
}

// Save runs the full hook pipeline for a single option against raw and, on
// success, persists the new value in place: the option's assignment line is
// replaced by a timestamped modification stamp (with the optional annotation)
// followed by the new assignment, preserving every unrelated line. A pipeline
// failure rejects the save without touching the file, and the live table
// keeps its previous value.
func (c *Config) Save(name, raw, annotation string) error {
	c.frozen = true

	opt, ok := c.schema.lookup(name)
	if !ok {
		return errors.New(ErrCodeUnknownOption, "cannot save unregistered option").
			WithContext("option", name)
	}

	if c.opts == nil {
		c.opts = c.schema.defaults()
	}

	tentative := make(map[string]interface{}, len(c.opts))
	for k, v := range c.opts {
		tentative[k] = v
	}

	value, ok := c.runPipeline(opt, raw, tentative)
	if !ok {
		return errors.New(ErrCodeSaveRejected, "value rejected by hook pipeline").
			WithContext("option", name).
			WithContext("raw", raw)
	}

	if err := c.editor.Apply(name, raw, annotation); err != nil {
		return err
	}

	c.opts[name] = value
	return nil
}

// WriteDefaultFile writes a fully commented-out config file showing every
// registered option's default, in registration order.
func (c *Config) WriteDefaultFile() error {
	var b strings.Builder
	for _, opt := range c.schema.options() {
		fmt.Fprintf(&b, "#%s = %v\n", opt.Name, opt.Default)
	}
	return c.editor.writeAtomic([]byte(b.String()))
}

// Log appends a message to the deferred log queue on behalf of the host.
func (c *Config) Log(level Level, text string) {
	c.log.Log(level, text)
}

// Messages returns a copy of the queued deferred log messages.
func (c *Config) Messages() []Message {
	return c.log.Messages()
}

// FlushLog drains the deferred log queue into sink and clears it. Call once
// the host's logging subsystem exists.
func (c *Config) FlushLog(sink Sink) error {
	return c.log.Flush(sink)
}

// isEmptyValue reports whether a final value counts as missing for the
// required-option check: nil, false, zero numbers, empty strings and
// zero-length collections.
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
