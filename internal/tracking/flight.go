package tracking

// LastContactLayout renders last-contact instants, always in UTC
const LastContactLayout = "2006-01-02 15:04:05 UTC"

// TrackedFlight is a scheduled flight currently reported by the state feed.
// Numeric fields are nil when the feed reported null for them.
type TrackedFlight struct {
	ICAO24        string   `json:"icao24"`
	Callsign      string   `json:"callsign"`
	OriginCountry string   `json:"origin_country"`
	Longitude     *float64 `json:"longitude"`
	Latitude      *float64 `json:"latitude"`
	Altitude      *float64 `json:"altitude"`
	Velocity      *float64 `json:"velocity"`
	Heading       *float64 `json:"heading"`
	VerticalRate  *float64 `json:"vertical_rate"`
	LastContact   string   `json:"last_contact"`
}

// HasPosition reports whether both coordinates are known
func (f TrackedFlight) HasPosition() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// CallsignSet is the immutable set of callsigns derived from the schedule.
// It is shared between cycles, so it exposes lookups only. The zero value is empty.
type CallsignSet struct {
	members map[string]struct{}
}

// NewCallsignSet builds a set; duplicates collapse
func NewCallsignSet(callsigns ...string) CallsignSet {
	members := make(map[string]struct{}, len(callsigns))
	for _, cs := range callsigns {
		members[cs] = struct{}{}
	}
	return CallsignSet{members: members}
}

// Contains is an exact, case-sensitive membership test
func (s CallsignSet) Contains(callsign string) bool {
	_, ok := s.members[callsign]
	return ok
}

func (s CallsignSet) Len() int {
	return len(s.members)
}
