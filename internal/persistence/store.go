// SPDX-License-Identifier: MIT

// Package persistence provides the durable key-value port used by the state
// core, plus a set of interchangeable backends and a typed record layer.
package persistence

// Store is the synchronous string-keyed durable store port. Values are
// opaque strings; there is no transactional guarantee across keys. Every
// record written through a Store is independently meaningful, so partial
// state after a crash is acceptable.
type Store interface {
	// Get retrieves a value. The second return is false when the key is absent.
	Get(key string) (string, bool, error)
	// Set writes a value, replacing any previous one.
	Set(key, value string) error
	// Remove deletes a key. Removing an absent key is not an error.
	Remove(key string) error
	// Close releases backend resources.
	Close() error
}
