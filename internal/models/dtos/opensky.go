package dtos

// StateSnapshot mirrors the JSON returned by OpenSky /states/all.
// States is nil when the response carries no "states" field or "states": null.
// Each element is normally a positional array; anything else is a malformed record
// left for the correlator to skip.
type StateSnapshot struct {
	Time   int64 `json:"time" msgpack:"time"`
	States []any `json:"states" msgpack:"states"`
}

// CachedSnapshot is a snapshot plus the instant it was fetched
type CachedSnapshot struct {
	Snapshot  *StateSnapshot `msgpack:"snapshot"`
	FetchedAt int64          `msgpack:"fetched_at"` // unix nanoseconds
}
