package storage

import (
	"context"

	"github.com/chris/wallet-tx-sync/pkg/models"
)

// ActivityReader defines the interface for reading the activity log.
type ActivityReader interface {
	// ListActivity retrieves the most recent entries, newest first.
	ListActivity(ctx context.Context, limit int32) ([]models.ActivityEntry, error)
}

// ActivityWriter appends to the activity log. Writing an entry id twice is a no-op.
type ActivityWriter interface {
	PutActivity(ctx context.Context, entry *models.ActivityEntry) error
}
