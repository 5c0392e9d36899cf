// integration.go: Command-line and environment overlays
//
// File values are not the only raw source: every registered option can be
// bound as a --name flag, and a HESTIA_<OPTION> environment variable can
// supply a raw value as well. Overlays feed the same hook pipeline as file
// values; precedence is defaults < file < environment < flags.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"os"
	"strings"

	flashflags "github.com/agilira/flash-flags"
)

// BindFlags registers every schema option as a string flag on fs and attaches
// the flag set to the engine. Call after registration and before parsing the
// command line; only flags the user actually set override file values.
func (c *Config) BindFlags(fs *flashflags.FlagSet) {
	for _, opt := range c.schema.options() {
		fs.String(opt.Name, "", "override config option \""+opt.Name+"\"")
	}
	c.flags = fs
}

// SetEnvPrefix changes the environment variable prefix (default "HESTIA_").
// An empty prefix disables the environment overlay.
func (c *Config) SetEnvPrefix(prefix string) {
	c.envPrefix = prefix
}

// envKey maps an option name to its environment variable name.
func (c *Config) envKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, ".", "_")
	return c.envPrefix + key
}

func (c *Config) applyEnvOverlay(raw map[string]string) {
	if c.envPrefix == "" {
		return
	}
	for _, name := range c.schema.names() {
		if value, ok := os.LookupEnv(c.envKey(name)); ok {
			raw[name] = value
		}
	}
}

func (c *Config) applyFlagOverlay(raw map[string]string) {
	if c.flags == nil {
		return
	}
	c.flags.VisitAll(func(flag *flashflags.Flag) {
		if !flag.Changed() {
			return
		}
		if _, ok := c.schema.lookup(flag.Name()); !ok {
			return
		}
		if value, ok := flag.Value().(string); ok {
			raw[flag.Name()] = value
		}
	})
}
