// secret.go: Redacted value wrapper
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

// redacted is what a Secret renders as everywhere a value could leak.
const redacted = "[hidden]"

// Secret wraps a sensitive string (room passwords and the like) so it is
// never logged, printed or exported in plaintext. Only Reveal returns the
// real value.
type Secret struct {
	value string
}

// NewSecret wraps a sensitive value.
func NewSecret(value string) *Secret {
	return &Secret{value: value}
}

// Reveal returns the wrapped value.
func (s *Secret) Reveal() string {
	if s == nil {
		return ""
	}
	return s.value
}

func (s *Secret) String() string {
	return redacted
}

func (s *Secret) GoString() string {
	return redacted
}

// MarshalYAML keeps secrets out of exported option tables.
func (s *Secret) MarshalYAML() (interface{}, error) {
	return redacted, nil
}

// MarshalJSON keeps secrets out of JSON renderings.
func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
