package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixStateSnapshot CachePrefix = "OPENSKY_STATES_"
)

// Refresh rate bounds in seconds
const (
	MinRefreshRateSeconds     = 15
	MaxRefreshRateSeconds     = 60
	DefaultRefreshRateSeconds = 30
)

const (
	DefaultSnapshotTTLSeconds = 30
	DefaultOpenSkyBaseURL     = "https://opensky-network.org/api"
)

const (
	NoActiveFlightsMessage = "No active flights currently in air from your schedule."
	FetchFailedMessage     = "Failed to fetch data from OpenSky"
)
