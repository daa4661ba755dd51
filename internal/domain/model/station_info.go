package model

// StationInfo is enrichment metadata resolved for an ADS-B subject (ICAO
// hex address) or FIRMS tile, analogous to the teacher's contact-service
// lookup for a chat Peer.
type StationInfo struct {
	ID          string
	DisplayName string
	Operator    string
	Country     string
}
