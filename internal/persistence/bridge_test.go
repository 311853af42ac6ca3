// SPDX-License-Identifier: MIT

package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeUserRecord(t *testing.T) {
	store := NewMemoryStore()
	b := NewBridge(store)

	_, ok, err := b.LoadUser()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SaveUser("demo@example.com"))

	// Wire format is a JSON object under the fixed "user" key.
	raw, ok, err := store.Get(KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"demo@example.com"}`, raw)

	email, ok, err := b.LoadUser()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "demo@example.com", email)

	require.NoError(t, b.RemoveUser())
	_, ok, err = b.LoadUser()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBridgePurchasedRecord(t *testing.T) {
	store := NewMemoryStore()
	b := NewBridge(store)

	ids, err := b.LoadPurchased()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, b.SavePurchased([]string{"1", "2"}))

	raw, ok, err := store.Get(KeyPurchased)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["1","2"]`, raw)

	ids, err = b.LoadPurchased()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestBridgeSavePurchasedNilWritesEmptyArray(t *testing.T) {
	store := NewMemoryStore()
	b := NewBridge(store)

	require.NoError(t, b.SavePurchased(nil))
	raw, ok, err := store.Get(KeyPurchased)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestBridgePositionRecord(t *testing.T) {
	store := NewMemoryStore()
	b := NewBridge(store)

	_, ok, err := b.LoadPosition("1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SavePosition("1", 42))

	// Offsets are stored as decimal text, keyed per course.
	raw, ok, err := store.Get("video_position_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", raw)

	sec, ok, err := b.LoadPosition("1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42.0, sec)

	// Fractional offsets survive the text round trip.
	require.NoError(t, b.SavePosition("2", 13.5))
	sec, ok, err = b.LoadPosition("2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 13.5, sec)
}

func TestBridgeCorruptRecords(t *testing.T) {
	store := NewMemoryStore()
	b := NewBridge(store)

	require.NoError(t, store.Set(KeyUser, "{not json"))
	_, _, err := b.LoadUser()
	assert.Error(t, err)

	require.NoError(t, store.Set(KeyPurchased, "oops"))
	_, err = b.LoadPurchased()
	assert.Error(t, err)

	require.NoError(t, store.Set(PositionKey("1"), "NaN-ish"))
	_, _, err = b.LoadPosition("1")
	assert.Error(t, err)
}
