// export.go: Option table snapshots and YAML export
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Snapshot returns a copy of the live option table, or the defaults if no
// reload has run yet. The copy is shallow; treat contained values as
// read-only.
func (c *Config) Snapshot() map[string]interface{} {
	source := c.opts
	if source == nil {
		return c.schema.defaults()
	}
	out := make(map[string]interface{}, len(source))
	for k, v := range source {
		out[k] = v
	}
	return out
}

// ExportYAML renders the merged option table as YAML for host inspection.
// Secret values marshal redacted.
func (c *Config) ExportYAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to export option table")
	}
	return data, nil
}
