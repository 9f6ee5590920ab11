package store

import "github.com/ayoisaiah/diary/internal/apperr"

var (
	errDiaryRunning = &apperr.Error{
		Message: "is diary already running? Only one instance can open the database at a time",
	}

	errUnknownDriver = &apperr.Error{
		Message: "unknown storage driver %q: must be 'bolt' or 'sqlite'",
	}

	errCorruptRecord = &apperr.Error{
		Message: "unable to decode stored record %s",
	}
)
