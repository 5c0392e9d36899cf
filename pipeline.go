// pipeline.go: Per-option hook pipeline
//
// Each present raw value runs through parse, validate and post in order.
// Whichever stage fails, the option falls back to its registered default and
// the failure is logged; a misbehaving hook never aborts the reload, and a
// panicking hook is converted into that stage's failure.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"reflect"

	"github.com/agilira/go-errors"
)

// runPipeline runs one option's hooks against a raw string. table is the
// tentative option table the post hook may consult. It returns the final
// typed value and whether the raw value survived; on failure the returned
// value is the option's default.
func (c *Config) runPipeline(opt Option, raw string, table map[string]interface{}) (interface{}, bool) {
	value := interface{}(raw)

	if opt.Parse != nil {
		parsed, err := safeParse(opt.Parse, opt.Name, raw)
		if err != nil {
			c.log.Logf(LevelError, "error parsing %q: %v; using default=%v", opt.Name, err, opt.Default)
			return opt.Default, false
		}
		value = parsed
	}

	if opt.Validate != nil && !safeValidate(opt.Validate, value) {
		c.log.Logf(LevelError, "invalid value for %q; using default=%v", opt.Name, opt.Default)
		return opt.Default, false
	}

	if opt.Post != nil {
		posted, err := safePost(opt.Post, table, opt.Name, value)
		if err != nil {
			c.log.Logf(LevelError, "error running post for %q: %v; using default=%v", opt.Name, err, opt.Default)
			return opt.Default, false
		}
		value = posted
	}

	return value, true
}

// runPostPass re-runs every post hook over the fully merged table, so hooks
// can react to sibling values that themselves came from defaults. Each hook
// is then re-applied to its own output; divergence means the hook is not
// idempotent, which is treated as a hook failure rather than silently
// accepting whichever result came last.
func (c *Config) runPostPass(table map[string]interface{}) {
	for _, opt := range c.schema.options() {
		if opt.Post == nil {
			continue
		}

		value, err := safePost(opt.Post, table, opt.Name, table[opt.Name])
		if err != nil {
			c.log.Logf(LevelError, "error running post for %q: %v; using default=%v", opt.Name, err, opt.Default)
			table[opt.Name] = opt.Default
			continue
		}

		again, err := safePost(opt.Post, table, opt.Name, value)
		if err != nil || !reflect.DeepEqual(value, again) {
			c.log.Logf(LevelError, "post hook for %q is not idempotent; using default=%v", opt.Name, opt.Default)
			table[opt.Name] = opt.Default
			continue
		}

		table[opt.Name] = value
	}
}

func safeParse(fn ParseFunc, name, raw string) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(ErrCodeParseError, fmt.Sprintf("parse hook panicked: %v", r))
		}
	}()
	return fn(name, raw)
}

func safeValidate(fn ValidateFunc, value interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return fn(value)
}

func safePost(fn PostFunc, table map[string]interface{}, name string, value interface{}) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(ErrCodePostError, fmt.Sprintf("post hook panicked: %v", r))
		}
	}()
	return fn(table, name, value)
}
