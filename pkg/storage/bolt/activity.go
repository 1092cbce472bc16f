package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/chris/wallet-tx-sync/pkg/models"
)

// activityKey sorts entries by timestamp, then by id for entries sharing a timestamp.
func activityKey(e *models.ActivityEntry) []byte {
	key := make([]byte, 8, 8+len(e.EntryID))
	binary.BigEndian.PutUint64(key, uint64(e.Timestamp.UnixNano()))
	return append(key, e.EntryID...)
}

// PutActivity records an entry. Redelivered entries with a known id are ignored.
func (s *Store) PutActivity(_ context.Context, entry *models.ActivityEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket(activityIndex)
		if ids.Get([]byte(entry.EntryID)) != nil {
			return nil
		}
		key := activityKey(entry)
		if err := tx.Bucket(activityName).Put(key, value); err != nil {
			return err
		}
		return ids.Put([]byte(entry.EntryID), key)
	})
	if err != nil {
		return fmt.Errorf("failed to put activity entry: %w", err)
	}
	return nil
}

// ListActivity returns the most recent entries, newest first.
func (s *Store) ListActivity(_ context.Context, limit int32) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(activityName).Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || int32(len(entries)) < limit); k, v = c.Prev() {
			var e models.ActivityEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to unmarshal activity entry: %w", err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}
