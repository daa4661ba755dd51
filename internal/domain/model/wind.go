package model

import "time"

// WindRequest asks for a simulated wind field over one region at one
// forecast hour, grounded on odin_wind/src/lib.rs's WnJob aggregate.
type WindRequest struct {
	Region      string
	ForecastHr  int
	MeshRes     float64 // WindNinja mesh resolution, meters
	WindHeightM float64 // height above ground, meters
}

// WindVector is one grid-cell sample of a simulated wind field (speed in
// m/s, direction in degrees true).
type WindVector struct {
	Lat, Lon  float64
	SpeedMS   float64
	DirectionDeg float64
}

// WindField is the result of one simulation run: a regularly-gridded wind
// vector field plus the metadata needed to cache/serve it.
type WindField struct {
	Request   WindRequest
	Vectors   []WindVector
	ComputedAt time.Time
}
