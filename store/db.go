package store

import (
	"time"

	"github.com/ayoisaiah/diary/internal/models"
)

// Supported storage drivers.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// DB is the database storage interface.
type DB interface {
	// AppendActivity adds a finalised record to the activity log
	AppendActivity(rec *models.ActivityRecord) error
	// GetActivity returns the records logged within [start, end] in
	// chronological order. A zero start or end leaves that side unbounded.
	GetActivity(start, end time.Time) ([]models.ActivityRecord, error)
	// DeleteActivityBefore removes records logged before cutoff and returns
	// how many were deleted
	DeleteActivityBefore(cutoff time.Time) (int, error)
	// AppendSummary adds a page summary
	AppendSummary(s *models.Summary) error
	// GetSummaries returns the summaries created within [start, end]
	GetSummaries(start, end time.Time) ([]models.Summary, error)
	// DeleteSummariesBefore removes summaries created before cutoff
	DeleteSummariesBefore(cutoff time.Time) (int, error)
	// GetGoal returns the persisted goal or nil if none was ever set
	GetGoal() (*models.Goal, error)
	// SaveGoal replaces the persisted goal
	SaveGoal(g *models.Goal) error
	// LastExport returns the time of the last successful export, or the zero
	// time
	LastExport() (time.Time, error)
	// SetLastExport records the time of a successful export
	SetLastExport(t time.Time) error
	// Close ends the database connection
	Close() error
}

// Open connects to the database at path using the named driver.
func Open(driver, path string) (DB, error) {
	switch driver {
	case DriverBolt, "":
		return NewClient(path)
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, errUnknownDriver.Fmt(driver)
	}
}
