// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for strongly typed keys in key value pairs.
package key

import (
	"strings"
)

// Keyer is a common interface all value key types must implement.
type Keyer interface {
	Key() string
}

// Name represents a single key.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Chain represents nested keys, rendered dot separated.
type Chain []Keyer

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	parts := make([]string, len(k))
	for i, keyer := range k {
		parts[i] = keyer.Key()
	}
	return strings.Join(parts, ".")
}
