package model

// Hotspot is one satellite-detected thermal anomaly, grounded on
// odin_orbital/src/firms.rs's FIRMS CSV row shape.
type Hotspot struct {
	TileID      string
	Lat         float64
	Lon         float64
	BrightnessK float64
	Confidence  int32
	Satellite   string
	AcquiredAt  int64
}
