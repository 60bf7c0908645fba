// models/api_models.go
package models

// SyncResponse is the JSON body returned by the sync trigger on success.
type SyncResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	ActionDatesCount int      `json:"actionDatesCount"`
	FilingDatesCount int      `json:"filingDatesCount"`
	SkippedTables    []string `json:"skippedTables,omitempty"`
	Timestamp        string   `json:"timestamp"`
}

// SyncErrorResponse is the JSON body returned by the sync trigger on failure.
type SyncErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// BulletinSnapshot is what the read path serves: both tables plus sync status.
type BulletinSnapshot struct {
	ActionDates []PresentationRow `json:"actionDates"`
	FilingDates []PresentationRow `json:"filingDates"`
	Metadata    *SyncMetadata     `json:"metadata"`
	SyncStatus  SyncStatus        `json:"syncStatus"`
}
