package config

import "github.com/ayoisaiah/diary/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errReadEnv = &apperr.Error{
		Message: "loading environment file %s failed",
	}

	errOutOfRange = &apperr.Error{
		Message: "%s must be between %d and %d, got %d",
	}

	errUnknownDriver = &apperr.Error{
		Message: "storage.driver must be 'bolt' or 'sqlite', got %q",
	}

	errUnknownLogLevel = &apperr.Error{
		Message: "logging.level must be one of debug, info, warn, or error, got %q",
	}

	errUnknownLogFormat = &apperr.Error{
		Message: "logging.format must be 'text' or 'json', got %q",
	}

	errInvalidPeriod = &apperr.Error{
		Message: "invalid period %q: must be one of %s",
	}

	errInvalidTime = &apperr.Error{
		Message: "unable to parse %s time %q",
	}

	errStartAfterEnd = &apperr.Error{
		Message: "start time (%s) must be before end time (%s)",
	}
)
