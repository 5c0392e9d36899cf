// schema.go: Option descriptors and the ordered schema table
//
// The schema table is the catalogue of every option independently-loaded
// components contribute before the first reload. Registration order is
// preserved so default-file generation is deterministic, and option names
// are unique across the whole table.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

// ParseFunc converts an option's raw file value into its typed value.
// A non-nil error drops the raw value and falls back to the default.
type ParseFunc func(name, raw string) (interface{}, error)

// ValidateFunc accepts or rejects an already parsed value.
type ValidateFunc func(value interface{}) bool

// PostFunc transforms a parsed value with access to the tentative option
// table, so one option's stored value may depend on its siblings. Post
// hooks must be idempotent when applied to their own output; the reload
// orchestrator verifies this and treats divergence as a hook failure.
type PostFunc func(opts map[string]interface{}, name string, value interface{}) (interface{}, error)

// Option describes one configuration option: its default, whether a non-empty
// final value is required, and the optional parse/validate/post hooks applied
// to values read from the file. Options are immutable once registered.
type Option struct {
	Name     string
	Default  interface{}
	Required bool
	Parse    ParseFunc
	Validate ValidateFunc
	Post     PostFunc
}

// schema is the ordered option table: a registration-ordered slice plus an
// index from name to position, and the owning namespace per option (used
// only for duplicate-conflict diagnostics).
type schema struct {
	opts  []Option
	index map[string]int
	owner map[string]string
}

func newSchema() *schema {
	return &schema{
		index: make(map[string]int),
		owner: make(map[string]string),
	}
}

// add inserts an option at the end of the table. Callers must have checked
// for duplicates already.
func (s *schema) add(opt Option, namespace string) {
	s.index[opt.Name] = len(s.opts)
	s.opts = append(s.opts, opt)
	s.owner[opt.Name] = namespace
}

func (s *schema) lookup(name string) (Option, bool) {
	i, ok := s.index[name]
	if !ok {
		return Option{}, false
	}
	return s.opts[i], true
}

// options returns the descriptors in registration order. The returned slice
// is the schema's backing storage and must not be mutated.
func (s *schema) options() []Option {
	return s.opts
}

func (s *schema) names() []string {
	names := make([]string, len(s.opts))
	for i, opt := range s.opts {
		names[i] = opt.Name
	}
	return names
}

// defaults builds a fresh name-to-default map covering every registered
// option. Each reload starts from this map so the final table is always
// total over the schema.
func (s *schema) defaults() map[string]interface{} {
	out := make(map[string]interface{}, len(s.opts))
	for _, opt := range s.opts {
		out[opt.Name] = opt.Default
	}
	return out
}
