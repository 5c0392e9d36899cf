// protocol.go: Protocol capability registry and discovery hook
//
// Chat protocol implementations are compiled in and register themselves by
// identifier, usually from an init function:
//
//	import _ "example.com/bot/protocols/xmpp"   // registers "xmpp"
//
// Discovery is then an explicit registry lookup instead of introspection
// over loaded symbols. An optional file convention check keeps parity with
// hosts that ship protocol plugins as `<prefix><id>.<ext>` files under a
// known directory.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
)

// Protocol is the capability contract a protocol implementation must satisfy.
// The engine only needs the identifier; everything else is between the host
// and the implementation.
type Protocol interface {
	// ProtocolName reports the identifier the implementation serves.
	ProtocolName() string
}

// ProtocolFactory produces a fresh Protocol instance for one identifier.
type ProtocolFactory func() (Protocol, error)

var (
	protocolMu       sync.RWMutex
	protocolRegistry = make(map[string]ProtocolFactory)
)

// RegisterProtocol registers the factory for a protocol identifier. Exactly
// one factory may serve an identifier; a second registration fails.
func RegisterProtocol(id string, factory ProtocolFactory) error {
	if id == "" {
		return errors.New(ErrCodeProtocolError, "protocol id cannot be empty")
	}
	if factory == nil {
		return errors.New(ErrCodeProtocolError, "protocol factory cannot be nil").
			WithContext("protocol", id)
	}

	protocolMu.Lock()
	defer protocolMu.Unlock()

	if _, dup := protocolRegistry[id]; dup {
		return errors.New(ErrCodeProtocolError, "protocol already registered").
			WithContext("protocol", id)
	}
	protocolRegistry[id] = factory
	return nil
}

// RegisteredProtocols returns the registered identifiers, sorted.
func RegisteredProtocols() []string {
	protocolMu.RLock()
	defer protocolMu.RUnlock()

	ids := make([]string, 0, len(protocolRegistry))
	for id := range protocolRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func lookupProtocol(id string) (ProtocolFactory, bool) {
	protocolMu.RLock()
	defer protocolMu.RUnlock()
	factory, ok := protocolRegistry[id]
	return factory, ok
}

// ProtocolsHook builds the parse hook for a protocol-list option. The raw
// value is a comma-separated list of identifiers; each must resolve to a
// registered factory that yields a working instance. When dir is non-empty,
// a plugin file named prefix+id+ext must also exist there. Any single bad
// protocol invalidates the whole list: every failure is logged critical and
// the option falls back to its default.
func (c *Config) ProtocolsHook(dir, prefix, ext string) ParseFunc {
	return func(name, raw string) (interface{}, error) {
		protocols := make(map[string]Protocol)
		failed := false

		for _, id := range splitStrip(strings.ReplaceAll(raw, "\n", ""), ",") {
			if id == "" {
				continue
			}

			if dir != "" {
				fname := filepath.Join(dir, prefix+id+ext)
				if _, err := os.Stat(fname); err != nil {
					c.log.Logf(LevelCritical, "no matching file %q for protocol %q", fname, id)
					failed = true
					continue
				}
			}

			factory, ok := lookupProtocol(id)
			if !ok {
				c.log.Logf(LevelCritical, "protocol %q has no registered implementation", id)
				failed = true
				continue
			}

			proto, err := factory()
			if err != nil || proto == nil {
				c.log.Logf(LevelCritical, "protocol %q failed to load: %v", id, err)
				failed = true
				continue
			}
			protocols[id] = proto
		}

		if failed {
			return nil, errors.New(ErrCodeProtocolError, "one or more protocols failed to load").
				WithContext("option", name)
		}
		return protocols, nil
	}
}
