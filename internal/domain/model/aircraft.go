package model

// AircraftPosition is a decoded SBS/BaseStation position report, grounded on
// odin_adsb/src/sbs.rs's field set (ICAO hex address, callsign, the subset of
// a full Mode-S position message this system tracks).
type AircraftPosition struct {
	ICAO            string
	Callsign        string
	Lat             float64
	Lon             float64
	AltitudeFt      int32
	GroundSpeedKt   float64
	TrackDeg        float64
	VerticalRateFpm int32
	ObservedAt      int64
	Station         StationInfo
}
