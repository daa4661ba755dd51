// Package wind orchestrates wind-field simulation runs, grounded on
// odin_wind/src/{lib,server}.rs's WnJob/WindServer pair: a request for a
// region/forecast-hour pair that is already being simulated is folded into
// that run instead of spawning a duplicate WindNinja-equivalent job.
package wind

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// Simulator runs the (simplified, non-WindNinja) simulation for one region
// and forecast hour. The production odin_wind shells out to a WindNinja
// binary over a DEM+HRRR input pair; this stands in with an analytic field
// so the orchestration machinery can be exercised without that dependency.
type Simulator interface {
	Simulate(ctx context.Context, req model.WindRequest) (model.WindField, error)
}

// Orchestrator coalesces concurrent requests for the same region/forecast
// hour onto a single simulation run via the actor package's
// RequestProcessor. Completed fields are not cached: a request that arrives
// after a run has finished starts a new run.
type Orchestrator struct {
	sim       Simulator
	processor *actor.RequestProcessor[model.WindRequest, model.WindField]
}

// NewOrchestrator builds an Orchestrator backed by sim.
func NewOrchestrator(sim Simulator) *Orchestrator {
	o := &Orchestrator{sim: sim}
	o.processor = &actor.RequestProcessor[model.WindRequest, model.WindField]{
		SameRequest: sameWindRequest,
		Fetch: func(ctx context.Context, req model.WindRequest) (model.WindField, error) {
			return o.sim.Simulate(ctx, req)
		},
	}
	return o
}

// Resolve returns the wind field for req, running (or joining an in-flight
// run of) the simulation as needed.
func (o *Orchestrator) Resolve(ctx context.Context, req model.WindRequest) (model.WindField, error) {
	return o.processor.Process(ctx, req)
}

// Pending reports the number of distinct simulation requests currently
// queued or running (requests coalesced onto another are not counted).
func (o *Orchestrator) Pending() int { return o.processor.Pending() }

func sameWindRequest(a, b model.WindRequest) bool {
	return a.Region == b.Region && a.ForecastHr == b.ForecastHr
}

// AnalyticSimulator produces a deterministic synthetic wind field in place
// of a real WindNinja run, useful for exercising the orchestrator and for
// local development without the external binary.
type AnalyticSimulator struct {
	GridRows, GridCols int
	Origin             model.WindVector // Lat/Lon of the grid's (0,0) cell
	CellSizeDeg        float64
}

// Simulate produces a deterministic field whose speed/direction vary
// smoothly across the grid and with forecast hour, standing in for a real
// WindNinja downscaling run.
func (a AnalyticSimulator) Simulate(_ context.Context, req model.WindRequest) (model.WindField, error) {
	rows, cols := a.GridRows, a.GridCols
	if rows <= 0 || cols <= 0 {
		return model.WindField{}, fmt.Errorf("wind: invalid grid dimensions %dx%d", rows, cols)
	}

	vectors := make([]model.WindVector, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			lat := a.Origin.Lat + float64(i)*a.CellSizeDeg
			lon := a.Origin.Lon + float64(j)*a.CellSizeDeg
			phase := float64(req.ForecastHr) * 0.1
			speed := 3 + 2*math.Sin(float64(i)/float64(rows)*math.Pi+phase)
			dir := math.Mod(180+45*math.Cos(float64(j)/float64(cols)*math.Pi+phase), 360)
			vectors = append(vectors, model.WindVector{Lat: lat, Lon: lon, SpeedMS: speed, DirectionDeg: dir})
		}
	}

	return model.WindField{Request: req, Vectors: vectors, ComputedAt: time.Now()}, nil
}
