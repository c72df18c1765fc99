package domain

import "time"

// FileStatus tracks where a discovered file is in the ingestion lifecycle.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusProcessed  FileStatus = "processed"
	FileStatusDiscarded  FileStatus = "discarded"
	FileStatusFailed     FileStatus = "failed"
)

// ValidFileStatus reports whether s is one of the known lifecycle states.
func ValidFileStatus(s FileStatus) bool {
	switch s {
	case FileStatusPending, FileStatusProcessing, FileStatusProcessed,
		FileStatusDiscarded, FileStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status is a final state. Files in a terminal
// state are not re-entered by the watcher; a full rebuild resets them.
func (s FileStatus) Terminal() bool {
	return s == FileStatusProcessed || s == FileStatusDiscarded || s == FileStatusFailed
}

// ProcessedFile is the audit record for every file the ingestion pipeline has
// ever observed. Records are never deleted, only advanced through statuses.
type ProcessedFile struct {
	ID             string
	FilePath       string
	FileName       string
	FileSize       int64
	FileType       string
	Status         FileStatus
	Classification Source
	Confidence     float64
	Priced         bool
	ServicesCount  int
	Reason         string
	ProcessedAt    time.Time
	CreatedAt      time.Time
}
