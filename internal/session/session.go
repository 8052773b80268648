// Package session keeps the current user's session record in a single
// key/value slot. There is no expiry, refresh or encryption.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"go.uber.org/zap"
)

const settingKey = "session"

// ErrIncomplete is returned when writing a session with missing fields
var ErrIncomplete = errors.New("session: incomplete user record")

// Slot is the key/value storage the session lives in
type Slot interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

type Store struct {
	slot Slot
}

func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

// Read returns the stored session. Missing, unreadable, malformed or
// partial records are all reported as absent.
func (s *Store) Read() (models.Session, bool) {
	raw, err := s.slot.GetSetting(settingKey)
	if err != nil {
		logger.Warn("session: read failed", zap.Error(err))
		return models.Session{}, false
	}
	if raw == "" {
		return models.Session{}, false
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		logger.Warn("session: discarding malformed record", zap.Error(err))
		return models.Session{}, false
	}
	if !sess.Valid() {
		logger.Warn("session: discarding partial record", zap.String("user_id", sess.ID))
		return models.Session{}, false
	}
	return sess, true
}

// Write persists the full record
func (s *Store) Write(sess models.Session) error {
	if !sess.Valid() {
		return ErrIncomplete
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.slot.SetSetting(settingKey, string(b)); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	logger.Info("session: signed in", zap.String("user_id", sess.ID), zap.String("role", string(sess.Role)))
	return nil
}

func (s *Store) Clear() error {
	if err := s.slot.DeleteSetting(settingKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	logger.Info("session: cleared")
	return nil
}
