package constants

// Schedule loading errors
const (
	ErrCodeScheduleMissing       = "SCHEDULE_MISSING"
	ErrCodeScheduleMalformed     = "SCHEDULE_MALFORMED"
	ErrCodeScheduleColumnMissing = "SCHEDULE_COLUMN_MISSING"
)

// State feed errors
const (
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeInvalidDataFormat  = "INVALID_DATA_FORMAT"
)

// Settings errors
const (
	ErrCodeRefreshRateOutOfRange = "REFRESH_RATE_OUT_OF_RANGE"
	ErrCodeImportUnsupported     = "IMPORT_UNSUPPORTED"
)

// Error Messages
// Human-readable messages corresponding to error codes

var ErrorMessages = map[string]string{
	ErrCodeScheduleMissing:       "The flight schedule source could not be found",
	ErrCodeScheduleMalformed:     "The flight schedule could not be parsed",
	ErrCodeScheduleColumnMissing: "The flight schedule is missing a required column",

	ErrCodeFetchFailed:        "Failed to fetch data from OpenSky",
	ErrCodeInvalidCredentials: "OpenSky rejected the configured credentials",
	ErrCodeRateLimited:        "OpenSky rate limit exceeded. Please try again later",
	ErrCodeNetworkError:       "Unable to connect to OpenSky. Please check your internet connection",
	ErrCodeInvalidDataFormat:  "The OpenSky response could not be decoded",

	ErrCodeRefreshRateOutOfRange: "Refresh rate must be between 15 and 60 seconds",
	ErrCodeImportUnsupported:     "Schedule import requires a database-backed schedule",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
