// SPDX-License-Identifier: MIT

package persistence

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/coursekit/coursekit/internal/log"
	"github.com/coursekit/coursekit/internal/metrics"
)

// Record keys. The catalog-consumer contract fixes these names and their
// value formats; changing them orphans previously persisted state.
const (
	KeyUser           = "user"
	KeyPurchased      = "purchased_course_ids"
	keyPositionPrefix = "video_position_"
)

// PositionKey returns the per-course playback offset key.
func PositionKey(courseID string) string { return keyPositionPrefix + courseID }

type userRecord struct {
	Email string `json:"email"`
}

// Bridge is the typed record layer over a raw Store. Each store slice owns
// its keys exclusively: the session record, the purchased-id set, and one
// offset record per course id. No two writers share a key.
type Bridge struct {
	store  Store
	logger zerolog.Logger
}

// NewBridge wraps a Store.
func NewBridge(store Store) *Bridge {
	return &Bridge{store: store, logger: log.WithComponent("persistence")}
}

// SaveUser persists the signed-in user record.
func (b *Bridge) SaveUser(email string) error {
	buf, err := json.Marshal(userRecord{Email: email})
	if err != nil {
		return err
	}
	return b.set(KeyUser, string(buf))
}

// LoadUser reads the signed-in user record. ok is false when none is stored.
func (b *Bridge) LoadUser() (email string, ok bool, err error) {
	raw, ok, err := b.get(KeyUser)
	if err != nil || !ok {
		return "", false, err
	}
	var rec userRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", false, fmt.Errorf("corrupt user record: %w", err)
	}
	return rec.Email, true, nil
}

// RemoveUser deletes the signed-in user record.
func (b *Bridge) RemoveUser() error {
	return b.remove(KeyUser)
}

// SavePurchased persists the full purchased-id set.
func (b *Bridge) SavePurchased(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	buf, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return b.set(KeyPurchased, string(buf))
}

// LoadPurchased reads the purchased-id set; absent means empty.
func (b *Bridge) LoadPurchased() ([]string, error) {
	raw, ok, err := b.get(KeyPurchased)
	if err != nil || !ok {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("corrupt purchased-id record: %w", err)
	}
	return ids, nil
}

// SavePosition persists a playback offset for one course, as decimal text.
func (b *Bridge) SavePosition(courseID string, seconds float64) error {
	return b.set(PositionKey(courseID), strconv.FormatFloat(seconds, 'f', -1, 64))
}

// LoadPosition reads the playback offset for one course. ok is false when
// no offset is stored or the record does not parse.
func (b *Bridge) LoadPosition(courseID string) (seconds float64, ok bool, err error) {
	raw, ok, err := b.get(PositionKey(courseID))
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt offset record for course %s: %w", courseID, err)
	}
	return v, true, nil
}

func (b *Bridge) get(key string) (string, bool, error) {
	v, ok, err := b.store.Get(key)
	b.count("get", key, err)
	return v, ok, err
}

func (b *Bridge) set(key, value string) error {
	err := b.store.Set(key, value)
	b.count("set", key, err)
	return err
}

func (b *Bridge) remove(key string) error {
	err := b.store.Remove(key)
	b.count("remove", key, err)
	return err
}

func (b *Bridge) count(op, key string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
		b.logger.Warn().
			Str(log.FieldEvent, "persist.op_fail").
			Str(log.FieldOp, op).
			Str(log.FieldKey, key).
			Err(err).
			Msg("persistence operation failed")
	}
	metrics.IncPersistenceOp(op, outcome)
}
