// models/meta.go
package models

import "time"

// SyncMetadataID is the fixed primary key of the singleton sync metadata row.
const SyncMetadataID = 1

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
	// SyncStatusNeverSynced is reported when no metadata row exists yet. It is never stored.
	SyncStatusNeverSynced SyncStatus = "never_synced"
)

// SyncMetadata records the outcome of the most recent sync attempt.
type SyncMetadata struct {
	ID             int        `db:"id" json:"-"`
	LastSyncAt     time.Time  `db:"last_sync_at" json:"last_sync_at"`
	SyncStatus     SyncStatus `db:"sync_status" json:"sync_status"`
	RecordsUpdated *int       `db:"records_updated" json:"records_updated,omitempty"` // unset on error
	ErrorMessage   *string    `db:"error_message" json:"error_message,omitempty"`     // set only on error
	SourceURL      string     `db:"source_url" json:"source_url"`
}

// NewSuccessMetadata builds the row written after a successful sync.
func NewSuccessMetadata(at time.Time, sourceURL string, recordsUpdated int) SyncMetadata {
	n := recordsUpdated
	return SyncMetadata{
		ID:             SyncMetadataID,
		LastSyncAt:     at,
		SyncStatus:     SyncStatusSuccess,
		RecordsUpdated: &n,
		SourceURL:      sourceURL,
	}
}

// NewErrorMetadata builds the row written after a failed sync.
func NewErrorMetadata(at time.Time, sourceURL string, err error) SyncMetadata {
	msg := err.Error()
	return SyncMetadata{
		ID:           SyncMetadataID,
		LastSyncAt:   at,
		SyncStatus:   SyncStatusError,
		ErrorMessage: &msg,
		SourceURL:    sourceURL,
	}
}
