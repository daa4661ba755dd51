package wind

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSimulator struct {
	calls atomic.Int32
	delay time.Duration
}

func (c *countingSimulator) Simulate(ctx context.Context, req model.WindRequest) (model.WindField, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return model.WindField{Request: req}, nil
}

func TestOrchestratorCoalescesSameRegionRequests(t *testing.T) {
	t.Parallel()
	sim := &countingSimulator{delay: 50 * time.Millisecond}
	o := NewOrchestrator(sim)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			field, err := o.Resolve(context.Background(), model.WindRequest{Region: "yosemite", ForecastHr: 3})
			require.NoError(t, err)
			assert.Equal(t, "yosemite", field.Request.Region)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), sim.calls.Load())
}

func TestOrchestratorDoesNotCoalesceDistinctForecastHours(t *testing.T) {
	t.Parallel()
	sim := &countingSimulator{}
	o := NewOrchestrator(sim)

	_, err := o.Resolve(context.Background(), model.WindRequest{Region: "yosemite", ForecastHr: 1})
	require.NoError(t, err)
	_, err = o.Resolve(context.Background(), model.WindRequest{Region: "yosemite", ForecastHr: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(2), sim.calls.Load())
}

func TestAnalyticSimulatorProducesFullGrid(t *testing.T) {
	t.Parallel()
	sim := AnalyticSimulator{GridRows: 4, GridCols: 3, CellSizeDeg: 0.01, Origin: model.WindVector{Lat: 37.8, Lon: -119.5}}
	field, err := sim.Simulate(context.Background(), model.WindRequest{Region: "yosemite", ForecastHr: 6})
	require.NoError(t, err)
	assert.Len(t, field.Vectors, 12)
}
